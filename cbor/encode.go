// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

// Marshal returns the canonical encoding of v: every head uses the shortest
// argument encoding, map pairs are sorted by Less, and floats keep the width
// they were constructed or decoded with.
func Marshal(v Value) ([]byte, error) { return AppendValue(nil, v) }

// AppendValue appends the canonical encoding of v to dst. On error, the
// returned slice must not be used.
func AppendValue(dst []byte, v Value) ([]byte, error) { return appendValue(dst, v, 0) }

// Encode writes the canonical encoding of v to w.
func Encode(w io.Writer, v Value) error { return NewEncoder(w).Encode(v) }

// Encoder writes canonically encoded values to an [io.Writer]. Each value is
// written with a single call to Write.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder returns a new Encoder. The [io.Writer] is not automatically flushed.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Encode CBOR data to the underlying [io.Writer].
func (e *Encoder) Encode(v Value) error {
	b, err := appendValue(e.buf[:0], v, 0)
	if err != nil {
		return err
	}
	e.buf = b
	if _, err := e.w.Write(b); err != nil {
		return fmt.Errorf("error writing cbor item: %w", err)
	}
	return nil
}

//nolint:gocyclo // Dispatch will always have naturally high complexity.
func appendValue(dst []byte, v Value, depth int) ([]byte, error) {
	if depth > MaxNestingDepth {
		return dst, ErrNestingDepth
	}

	switch v := v.(type) {
	case nil:
		return dst, fmt.Errorf("%w: nil value", ErrMalformed)

	case Int:
		return appendHead(dst, v.majorType(), v.arg), nil

	case ByteString:
		dst = appendHead(dst, byteStringMajorType, uint64(len(v)))
		return append(dst, v...), nil

	case TextString:
		dst = appendHead(dst, textStringMajorType, uint64(len(v)))
		return append(dst, v...), nil

	case Array:
		dst = appendHead(dst, arrayMajorType, uint64(len(v)))
		for i, elem := range v {
			var err error
			if dst, err = appendValue(dst, elem, depth+1); err != nil {
				return dst, fmt.Errorf("error encoding array item %d: %w", i, err)
			}
		}
		return dst, nil

	case Map:
		dst = appendHead(dst, mapMajorType, uint64(len(v)))
		for _, p := range v {
			if p.Key == nil {
				return dst, fmt.Errorf("%w: nil map key", ErrMalformed)
			}
		}
		// Sort a copy so that the map keeps its logical order
		pairs := slices.Clone(v)
		sortPairs(pairs)
		for i, p := range pairs {
			var err error
			if dst, err = appendValue(dst, p.Key, depth+1); err != nil {
				return dst, fmt.Errorf("error encoding map key %d: %w", i, err)
			}
			if dst, err = appendValue(dst, p.Value, depth+1); err != nil {
				return dst, fmt.Errorf("error encoding map val %d: %w", i, err)
			}
		}
		return dst, nil

	case Tag:
		if v.Content == nil {
			return dst, fmt.Errorf("%w: tag %d has no content", ErrMalformed, v.Number)
		}
		var err error
		dst = appendHead(dst, tagMajorType, v.Number)
		if dst, err = appendValue(dst, v.Content, depth+1); err != nil {
			return dst, fmt.Errorf("error encoding tag %d content: %w", v.Number, err)
		}
		return dst, nil

	case Float:
		if !v.valid() {
			return dst, fmt.Errorf("%w: invalid float width %d", ErrMalformed, v.Width)
		}
		return appendFloat(dst, v), nil

	case Simple:
		if err := v.check(); err != nil {
			return dst, fmt.Errorf("error encoding simple value %d: %w", uint8(v), err)
		}
		return appendSimple(dst, v), nil
	}

	panic("unreachable")
}

// appendFloat writes the float at its stored width, bypassing argument
// minimization.
func appendFloat(dst []byte, f Float) []byte {
	dst = append(dst, simpleMajorType<<5|f.additionalInfo())
	switch f.Width {
	case Half:
		return binary.BigEndian.AppendUint16(dst, uint16(f.Bits))
	case Single:
		return binary.BigEndian.AppendUint32(dst, uint32(f.Bits))
	default:
		return binary.BigEndian.AppendUint64(dst, f.Bits)
	}
}
