// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import "strconv"

// Simple is a CBOR simple value (major type 7, excluding floats).
//
// Only False, True, Null, Undefined, and the values 32..255 are well-formed.
// Values 0..19 are unassigned and 24..31 are reserved; both are rejected when
// encoding.
type Simple uint8

// Well-known simple values
const (
	False     Simple = Simple(falseVal)
	True      Simple = Simple(trueVal)
	Null      Simple = Simple(nullVal)
	Undefined Simple = Simple(undefinedVal)
)

// Bool returns True or False.
func Bool(b bool) Simple {
	if b {
		return True
	}
	return False
}

// Type implements Value.
func (Simple) Type() Type { return TypeSimple }

func (Simple) value() {}

// Bool returns the boolean value of s if it is True or False.
func (s Simple) Bool() (value, ok bool) {
	switch s {
	case True:
		return true, true
	case False:
		return false, true
	}
	return false, false
}

func (s Simple) String() string {
	switch s {
	case False:
		return "false"
	case True:
		return "true"
	case Null:
		return "null"
	case Undefined:
		return "undefined"
	}
	return "simple(" + strconv.Itoa(int(s)) + ")"
}

// check returns the error for encoding s, if any.
func (s Simple) check() error {
	switch {
	case s < False:
		return ErrUnassigned
	case s <= Undefined, s >= 32:
		return nil
	default:
		return ErrReservedSimpleValue
	}
}

func appendSimple(dst []byte, s Simple) []byte {
	if s <= Undefined {
		return append(dst, simpleMajorType<<5|byte(s))
	}
	return append(dst, simpleMajorType<<5|oneByteAdditional, byte(s))
}
