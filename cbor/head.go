// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"encoding/binary"
	"math"
)

// Major types (high 3 bits)
const (
	unsignedIntMajorType byte = 0x00
	negativeIntMajorType byte = 0x01
	byteStringMajorType  byte = 0x02
	textStringMajorType  byte = 0x03
	arrayMajorType       byte = 0x04
	mapMajorType         byte = 0x05
	tagMajorType         byte = 0x06
	simpleMajorType      byte = 0x07
)

// Additional info (low 5 bits)
const (
	oneByteAdditional    byte = 0x18
	twoBytesAdditional   byte = 0x19
	fourBytesAdditional  byte = 0x1a
	eightBytesAdditional byte = 0x1b
	indefiniteAdditional byte = 0x1f
)

// Well-known simple values
const (
	falseVal     byte = 0x14
	trueVal      byte = 0x15
	nullVal      byte = 0x16
	undefinedVal byte = 0x17
	halfFloat    byte = 0x19
	singleFloat  byte = 0x1a
	doubleFloat  byte = 0x1b
)

// Bitmasks
const (
	threeBitMask byte = 0x07
	fiveBitMask  byte = 0x1f
)

// MaxNestingDepth limits how deeply arrays, maps, and tags may be nested when
// decoding, validating, or encoding. RFC 8949 does not define a limit, but
// recursion must be bounded for untrusted input.
const MaxNestingDepth = 256

// head is a decoded initial byte and argument.
type head struct {
	major byte
	ai    byte
	arg   uint64
}

// headLen returns the number of bytes needed to encode arg minimally,
// including the initial byte.
func headLen(arg uint64) int {
	switch {
	case arg < uint64(oneByteAdditional):
		return 1
	case arg <= math.MaxUint8:
		return 2
	case arg <= math.MaxUint16:
		return 3
	case arg <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// appendHead appends the shortest encoding of a major type and its argument.
func appendHead(dst []byte, majorType byte, arg uint64) []byte {
	b := (majorType & threeBitMask) << 5
	switch headLen(arg) {
	case 1:
		return append(dst, b|byte(arg))
	case 2:
		return append(dst, b|oneByteAdditional, byte(arg))
	case 3:
		return binary.BigEndian.AppendUint16(append(dst, b|twoBytesAdditional), uint16(arg))
	case 5:
		return binary.BigEndian.AppendUint32(append(dst, b|fourBytesAdditional), uint32(arg))
	default:
		return binary.BigEndian.AppendUint64(append(dst, b|eightBytesAdditional), arg)
	}
}

// argLen returns the number of bytes following the initial byte for the
// additional info, or -1 if the additional info is not a definite argument.
func argLen(ai byte) int {
	switch {
	case ai < oneByteAdditional:
		return 0
	case ai == oneByteAdditional:
		return 1
	case ai == twoBytesAdditional:
		return 2
	case ai == fourBytesAdditional:
		return 4
	case ai == eightBytesAdditional:
		return 8
	default:
		return -1
	}
}

// readHead parses the head of the item starting at data[off] and returns the
// offset just past it.
func readHead(data []byte, off int) (h head, next int, _ error) {
	if off >= len(data) {
		return head{}, off, syntaxErr(off, ErrMalformed)
	}
	h.major = data[off] >> 5
	h.ai = data[off] & fiveBitMask

	n := argLen(h.ai)
	switch {
	case n == 0:
		h.arg = uint64(h.ai)
		return h, off + 1, nil
	case n > 0:
		if len(data)-off-1 < n {
			return head{}, off, syntaxErr(off, ErrMalformed)
		}
		h.arg = toU64(data[off+1 : off+1+n])
		return h, off + 1 + n, nil
	case h.ai == indefiniteAdditional:
		return head{}, off, syntaxErr(off, ErrIndefiniteLength)
	case h.major == simpleMajorType:
		return head{}, off, syntaxErr(off, ErrMalformed)
	default:
		return head{}, off, syntaxErr(off, ErrReservedAdditionalInformation)
	}
}

// panics if more than 8 bytes given
func toU64(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	if len(b) > 8 {
		panic("too many bytes to decode into a uint64 without overflowing")
	}
	var padded [8]byte
	copy(padded[8-len(b):], b)
	return binary.BigEndian.Uint64(padded[:])
}

// checkSimple validates the argument of a major type 7 head which is not a
// float.
func checkSimple(h head) error {
	switch {
	case h.ai < falseVal:
		return ErrUnassigned
	case h.ai <= undefinedVal:
		return nil
	case h.ai == oneByteAdditional && h.arg < 32:
		return ErrReservedSimpleValue
	case h.ai == oneByteAdditional:
		return nil
	}
	return ErrUnassigned
}
