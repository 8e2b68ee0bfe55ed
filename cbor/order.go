// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"bytes"
	"slices"
	"strings"
)

// Less is the canonical order of map keys used by the encoder. It is a strict
// weak order:
//
//  1. Keys are ranked by major type, except that non-negative and negative
//     integers share a rank and compare by numeric value.
//  2. Byte strings and text strings compare by length, then byte-wise.
//  3. Simple values come before floats. Floats of different widths compare by
//     width (half < single < double), not by value. Floats of one width use
//     the IEEE 754 totalOrder of their bits.
//  4. Two arrays, two maps, or two tags are never less than one another.
func Less(a, b Value) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	switch a := a.(type) {
	case Int:
		return a.Cmp(b.(Int)) < 0
	case ByteString:
		b := b.(ByteString)
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return bytes.Compare(a, b) < 0
	case TextString:
		b := b.(TextString)
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return strings.Compare(string(a), string(b)) < 0
	case Simple:
		return a < b.(Simple)
	case Float:
		b := b.(Float)
		if a.Width != b.Width {
			return a.Width < b.Width
		}
		return a.totalOrderKey() < b.totalOrderKey()
	}
	return false
}

func rank(v Value) int {
	switch v.(type) {
	case Int:
		return 0
	case ByteString:
		return 2
	case TextString:
		return 3
	case Array:
		return 4
	case Map:
		return 5
	case Tag:
		return 6
	case Simple:
		return 7
	case Float:
		return 8
	default:
		return 9
	}
}

func compareKeys(a, b Pair) int {
	switch {
	case Less(a.Key, b.Key):
		return -1
	case Less(b.Key, a.Key):
		return 1
	default:
		return 0
	}
}

// sortPairs sorts pairs in place by key. Keys which are equivalent keep their
// relative order.
func sortPairs(pairs []Pair) { slices.SortStableFunc(pairs, compareKeys) }
