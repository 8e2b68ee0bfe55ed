// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
)

// Decode parses data, which must contain exactly one CBOR item, into a newly
// allocated Value tree. Strings are copied, so data may be reused once Decode
// returns.
//
// Errors wrap one of ErrMalformed, ErrReservedAdditionalInformation,
// ErrIndefiniteLength, ErrUnassigned, ErrReservedSimpleValue, or
// ErrNestingDepth in a *SyntaxError.
func Decode(data []byte) (Value, error) {
	v, next, err := decodeItem(data, 0, 0)
	if err != nil {
		return nil, err
	}
	if next != len(data) {
		return nil, syntaxErr(next, ErrMalformed)
	}
	return v, nil
}

// DecodeFirst parses the first item of a CBOR sequence and returns the bytes
// following it.
func DecodeFirst(data []byte) (v Value, rest []byte, err error) {
	v, next, err := decodeItem(data, 0, 0)
	if err != nil {
		return nil, data, err
	}
	return v, data[next:], nil
}

//nolint:gocyclo // Dispatch will always have naturally high complexity.
func decodeItem(data []byte, off, depth int) (Value, int, error) {
	if depth > MaxNestingDepth {
		return nil, off, syntaxErr(off, ErrNestingDepth)
	}
	h, next, err := readHead(data, off)
	if err != nil {
		return nil, off, err
	}

	switch h.major {
	case unsignedIntMajorType:
		return NewUint(h.arg), next, nil

	case negativeIntMajorType:
		return NewNegInt(h.arg), next, nil

	case byteStringMajorType, textStringMajorType:
		if h.arg > uint64(len(data)-next) {
			return nil, off, syntaxErr(off, ErrMalformed)
		}
		end := next + int(h.arg)
		if h.major == textStringMajorType {
			return TextString(data[next:end]), end, nil
		}
		bs := make(ByteString, h.arg)
		copy(bs, data[next:end])
		return bs, end, nil

	case arrayMajorType:
		// Every item is at least one byte, which bounds the allocation
		if h.arg > uint64(len(data)-next) {
			return nil, off, syntaxErr(off, ErrMalformed)
		}
		arr := make(Array, h.arg)
		for i := range arr {
			if arr[i], next, err = decodeItem(data, next, depth+1); err != nil {
				return nil, off, err
			}
		}
		return arr, next, nil

	case mapMajorType:
		if h.arg > uint64(len(data)-next)/2 {
			return nil, off, syntaxErr(off, ErrMalformed)
		}
		m := make(Map, h.arg)
		for i := range m {
			if m[i].Key, next, err = decodeItem(data, next, depth+1); err != nil {
				return nil, off, err
			}
			if m[i].Value, next, err = decodeItem(data, next, depth+1); err != nil {
				return nil, off, err
			}
		}
		return m, next, nil

	case tagMajorType:
		content, end, err := decodeItem(data, next, depth+1)
		if err != nil {
			return nil, off, err
		}
		return Tag{Number: h.arg, Content: content}, end, nil

	default:
		switch h.ai {
		case halfFloat:
			return Float{Width: Half, Bits: h.arg}, next, nil
		case singleFloat:
			return Float{Width: Single, Bits: h.arg}, next, nil
		case doubleFloat:
			return Float{Width: Double, Bits: h.arg}, next, nil
		}
		if err := checkSimple(h); err != nil {
			return nil, off, syntaxErr(off, err)
		}
		return Simple(h.arg), next, nil
	}
}

// DefaultMaxLength is the limit used by a Decoder with a zero MaxLength. It
// limits the size of a string or the number of items in an array or map
// (where each key-value pair counts as two items).
const DefaultMaxLength = 100_000

// ErrNullOrUndefined is wrapped and returned in Unwrap/Untag functions to
// allow handling of null or undefined values.
var ErrNullOrUndefined = fmt.Errorf("null or undefined")

// Decoder iteratively consumes a reader, decoding one CBOR item at a time.
// Exactly the bytes of each item are read, so the reader may carry other data
// after a CBOR sequence.
type Decoder struct {
	r   io.Reader
	off int

	// MaxLength limits declared lengths before memory is allocated for them.
	// Exceeding it causes ErrOutOfMemory. If zero, DefaultMaxLength is used.
	// String lengths are further capped at math.MaxInt.
	MaxLength uint64
}

// NewDecoder returns a new Decoder. The [io.Reader] is not copied.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// InputOffset returns the number of bytes consumed from the reader.
func (d *Decoder) InputOffset() int { return d.off }

// Decode reads and decodes the next item. At the end of the stream, it
// returns io.EOF.
func (d *Decoder) Decode() (Value, error) {
	raw, err := d.DecodeRaw()
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// DecodeRaw reads the next item without decoding it. The returned bytes are
// well-formed. At the end of the stream, it returns io.EOF.
func (d *Decoder) DecodeRaw() (RawBytes, error) {
	start := d.off
	h, raw, err := d.readHead(nil)
	if err != nil {
		if errors.Is(err, io.EOF) && d.off == start {
			return nil, io.EOF
		}
		return nil, err
	}
	return d.readRawVal(raw, h, start, 0)
}

func (d *Decoder) maxLength() uint64 {
	if d.MaxLength == 0 {
		return DefaultMaxLength
	}
	return d.MaxLength
}

func (d *Decoder) readRawVal(raw []byte, h head, start, depth int) ([]byte, error) {
	if depth > MaxNestingDepth {
		return nil, syntaxErr(start, ErrNestingDepth)
	}

	switch h.major {
	// Types containing only first byte and additional data
	case unsignedIntMajorType, negativeIntMajorType:
		return raw, nil

	// Types containing a well-known size without decoding nested types
	case byteStringMajorType, textStringMajorType:
		if h.arg > d.maxLength() || h.arg > math.MaxInt {
			return nil, syntaxErr(start, ErrOutOfMemory)
		}
		// The buffer grows with the bytes actually read, so a declared length
		// never allocates up front.
		buf := bytes.NewBuffer(raw)
		n, err := io.CopyN(buf, d.r, int64(h.arg))
		d.off += int(n)
		if err != nil {
			return nil, d.readErr(start, err)
		}
		return buf.Bytes(), nil

	// Types which must be fully decoded to know their size
	case arrayMajorType, mapMajorType:
		length := h.arg
		if h.major == mapMajorType {
			if length > d.maxLength()/2 {
				return nil, syntaxErr(start, ErrOutOfMemory)
			}
			length *= 2
		}
		if length > d.maxLength() {
			return nil, syntaxErr(start, ErrOutOfMemory)
		}
		for range length {
			itemStart := d.off
			var item head
			var err error
			if item, raw, err = d.readHead(raw); err != nil {
				return nil, d.readErr(itemStart, err)
			}
			if raw, err = d.readRawVal(raw, item, itemStart, depth+1); err != nil {
				return nil, err
			}
		}
		return raw, nil

	// Tag types are decoded like a simple value followed by another value
	case tagMajorType:
		itemStart := d.off
		item, raw, err := d.readHead(raw)
		if err != nil {
			return nil, d.readErr(itemStart, err)
		}
		return d.readRawVal(raw, item, itemStart, depth+1)

	default:
		if h.ai >= halfFloat {
			return raw, nil
		}
		if err := checkSimple(h); err != nil {
			return nil, syntaxErr(start, err)
		}
		return raw, nil
	}
}

// readHead reads one head from the stream and appends its bytes to raw.
func (d *Decoder) readHead(raw []byte) (head, []byte, error) {
	start := d.off
	var first [1]byte
	if n, err := d.r.Read(first[:]); n == 0 { // allows for n=1, err=io.EOF
		if err == nil {
			err = io.ErrNoProgress
		}
		return head{}, nil, err
	}
	d.off++
	raw = append(raw, first[0])

	n := argLen(first[0] & fiveBitMask)
	if n < 0 {
		h, _, err := readHead(first[:], 0)
		if se := (*SyntaxError)(nil); errors.As(err, &se) {
			se.Offset = start
		}
		return h, nil, err
	}
	raw = append(raw, make([]byte, n)...)
	if _, err := io.ReadFull(d.r, raw[len(raw)-n:]); err != nil {
		return head{}, nil, d.readErr(start, err)
	}
	d.off += n

	h, _, err := readHead(raw[len(raw)-n-1:], 0)
	return h, raw, err
}

// readErr converts a premature end of stream into a malformed item error.
func (d *Decoder) readErr(start int, err error) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return syntaxErr(start, ErrMalformed)
	}
	return fmt.Errorf("error reading cbor item: %w", err)
}

// UnwrapArray ensures the next type to decode is an array and returns its
// length, progressing the underlying reader to the start of the first item.
//
// If the next value is the undefined or null simple value, err will wrap
// ErrNullOrUndefined.
func (d *Decoder) UnwrapArray() (uint64, error) { return d.unwrap(arrayMajorType) }

// UnwrapMap ensures the next type to decode is a map and returns its number
// of pairs, progressing the underlying reader to the start of the first key.
//
// If the next value is the undefined or null simple value, err will wrap
// ErrNullOrUndefined.
func (d *Decoder) UnwrapMap() (uint64, error) { return d.unwrap(mapMajorType) }

// UnwrapBytes ensures the next type to decode is either a text or byte string
// and returns its length, progressing the underlying reader to the start of
// the data.
//
// If the next value is the undefined or null simple value, err will wrap
// ErrNullOrUndefined.
func (d *Decoder) UnwrapBytes() (uint64, error) {
	return d.unwrap(byteStringMajorType, textStringMajorType)
}

// Untag ensures the next type to decode is a tag and returns the tag number,
// progressing the underlying reader to the start of the tag value.
//
// If the next value is the undefined or null simple value, err will wrap
// ErrNullOrUndefined.
func (d *Decoder) Untag() (uint64, error) { return d.unwrap(tagMajorType) }

func (d *Decoder) unwrap(allowedTypes ...byte) (uint64, error) {
	start := d.off
	h, _, err := d.readHead(nil)
	if err != nil {
		return 0, d.readErr(start, err)
	}
	if h.major == simpleMajorType && (h.ai == undefinedVal || h.ai == nullVal) {
		return 0, fmt.Errorf("unexpected type: %x: %w", h.major, ErrNullOrUndefined)
	}
	if !slices.Contains(allowedTypes, h.major) {
		return 0, fmt.Errorf("unexpected type: %x", h.major)
	}
	return h.arg, nil
}
