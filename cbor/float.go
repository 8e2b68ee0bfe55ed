// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"math"
	"strconv"

	"github.com/x448/float16"
)

// FloatWidth is the encoded size in bytes of a CBOR float.
type FloatWidth uint8

// Float widths
const (
	Half   FloatWidth = 2
	Single FloatWidth = 4
	Double FloatWidth = 8
)

// Float is an IEEE 754 half, single, or double precision float (major type 7,
// additional info 25, 26, or 27).
//
// The width is kept exactly as decoded or constructed: floats are never
// widened or narrowed when encoding. Bits holds the raw bit pattern in its
// low 16, 32, or 64 bits, so signed zeros and NaN payloads are preserved.
type Float struct {
	Width FloatWidth
	Bits  uint64
}

// NewFloat16 returns a half precision Float.
func NewFloat16(f float16.Float16) Float { return Float{Width: Half, Bits: uint64(f.Bits())} }

// NewFloat32 returns a single precision Float.
func NewFloat32(f float32) Float { return Float{Width: Single, Bits: uint64(math.Float32bits(f))} }

// NewFloat64 returns a double precision Float.
func NewFloat64(f float64) Float { return Float{Width: Double, Bits: math.Float64bits(f)} }

// NewFloatShortest returns the narrowest Float which represents f exactly.
// NaN values are kept as double precision to preserve their payload.
func NewFloatShortest(f float64) Float {
	if math.IsNaN(f) {
		return NewFloat64(f)
	}
	f32 := float32(f)
	if float64(f32) != f {
		return NewFloat64(f)
	}
	if float16.PrecisionFromfloat32(f32) == float16.PrecisionExact {
		return NewFloat16(float16.Fromfloat32(f32))
	}
	return NewFloat32(f32)
}

// Type implements Value.
func (Float) Type() Type { return TypeFloat }

func (Float) value() {}

// Float64 returns the numeric value of f.
func (f Float) Float64() float64 {
	switch f.Width {
	case Half:
		return float64(float16.Frombits(uint16(f.Bits)).Float32())
	case Single:
		return float64(math.Float32frombits(uint32(f.Bits)))
	default:
		return math.Float64frombits(f.Bits)
	}
}

// Float16 returns f as a half precision float if it has that width.
func (f Float) Float16() (float16.Float16, bool) {
	if f.Width != Half {
		return 0, false
	}
	return float16.Frombits(uint16(f.Bits)), true
}

// Float32 returns f as a single precision float if it has that width.
func (f Float) Float32() (float32, bool) {
	if f.Width != Single {
		return 0, false
	}
	return math.Float32frombits(uint32(f.Bits)), true
}

// IsNaN reports whether f is any NaN.
func (f Float) IsNaN() bool {
	if f.Width == Half {
		return float16.Frombits(uint16(f.Bits)).IsNaN()
	}
	return math.IsNaN(f.Float64())
}

func (f Float) String() string {
	switch f.Width {
	case Half, Single:
		return strconv.FormatFloat(f.Float64(), 'g', -1, 32)
	default:
		return strconv.FormatFloat(f.Float64(), 'g', -1, 64)
	}
}

func (f Float) valid() bool {
	switch f.Width {
	case Half:
		return f.Bits <= math.MaxUint16
	case Single:
		return f.Bits <= math.MaxUint32
	case Double:
		return true
	}
	return false
}

func (f Float) additionalInfo() byte {
	switch f.Width {
	case Half:
		return halfFloat
	case Single:
		return singleFloat
	default:
		return doubleFloat
	}
}

// totalOrderKey maps the bits of a float to an unsigned integer whose natural
// order is the IEEE 754 totalOrder predicate for floats of one width.
func (f Float) totalOrderKey() uint64 {
	sign := uint64(1) << (8*uint64(f.Width) - 1)
	if f.Bits&sign != 0 {
		return ^f.Bits & (sign<<1 - 1)
	}
	return f.Bits | sign
}
