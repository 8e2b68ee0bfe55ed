// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Int is a CBOR integer (major type 0 or 1) in the range -2**64..(2**64)-1.
//
// The zero value is 0.
type Int struct {
	neg bool
	arg uint64 // n for a non-negative n, -1-n for a negative n
}

// NewInt returns the Int for a signed integer.
func NewInt(i int64) Int {
	if i < 0 {
		return Int{neg: true, arg: uint64(-(i + 1))}
	}
	return Int{arg: uint64(i)}
}

// NewUint returns the Int for an unsigned integer.
func NewUint(u uint64) Int { return Int{arg: u} }

// NewNegInt returns the negative Int -1-arg, where arg is the argument of a
// major type 1 head. NewNegInt(math.MaxUint64) is -2**64.
func NewNegInt(arg uint64) Int { return Int{neg: true, arg: arg} }

var (
	bigMaxUint = new(big.Int).SetUint64(math.MaxUint64)
	bigMinNeg  = new(big.Int).Sub(new(big.Int).Neg(bigMaxUint), big.NewInt(1))
)

// NewBigInt returns the Int for b or an error if b is out of range.
func NewBigInt(b *big.Int) (Int, error) {
	if b.Cmp(bigMaxUint) > 0 || b.Cmp(bigMinNeg) < 0 {
		return Int{}, fmt.Errorf("integer %s out of range", b)
	}
	if b.Sign() >= 0 {
		return Int{arg: b.Uint64()}, nil
	}
	arg := new(big.Int).Neg(b)
	arg.Sub(arg, big.NewInt(1))
	return Int{neg: true, arg: arg.Uint64()}, nil
}

// Type implements Value.
func (Int) Type() Type { return TypeInt }

func (Int) value() {}

// IsNegative reports whether i is encoded with major type 1.
func (i Int) IsNegative() bool { return i.neg }

// Arg returns the argument of the integer's head: i itself when non-negative
// and -1-i when negative.
func (i Int) Arg() uint64 { return i.arg }

// Int64 returns i as an int64 and whether it fits.
func (i Int) Int64() (int64, bool) {
	if i.arg > math.MaxInt64 {
		return 0, false
	}
	if i.neg {
		return -int64(i.arg) - 1, true
	}
	return int64(i.arg), true
}

// Uint64 returns i as a uint64 and whether it fits.
func (i Int) Uint64() (uint64, bool) {
	if i.neg {
		return 0, false
	}
	return i.arg, true
}

// Big returns i as a newly allocated big.Int.
func (i Int) Big() *big.Int {
	b := new(big.Int).SetUint64(i.arg)
	if i.neg {
		b.Neg(b)
		b.Sub(b, big.NewInt(1))
	}
	return b
}

// Cmp compares i and j numerically and returns -1, 0, or +1.
func (i Int) Cmp(j Int) int {
	switch {
	case i.neg && !j.neg:
		return -1
	case !i.neg && j.neg:
		return 1
	case i.arg == j.arg:
		return 0
	case (i.arg < j.arg) != i.neg:
		return -1
	default:
		return 1
	}
}

func (i Int) String() string {
	if !i.neg {
		return strconv.FormatUint(i.arg, 10)
	}
	if i.arg < math.MaxUint64 {
		return "-" + strconv.FormatUint(i.arg+1, 10)
	}
	return i.Big().String()
}

func (i Int) majorType() byte {
	if i.neg {
		return negativeIntMajorType
	}
	return unsignedIntMajorType
}
