// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"bytes"
	"slices"
)

// Type identifies which variant a Value holds.
type Type uint8

// Value types. The zero Type is invalid and is only reported by a zero View.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeByteString
	TypeTextString
	TypeArray
	TypeMap
	TypeTag
	TypeFloat
	TypeSimple
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeByteString:
		return "bstr"
	case TypeTextString:
		return "tstr"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeTag:
		return "tag"
	case TypeFloat:
		return "float"
	case TypeSimple:
		return "simple"
	default:
		return "invalid"
	}
}

// Value is a decoded CBOR data item. It is one of Int, ByteString,
// TextString, Array, Map, Tag, Float, or Simple; no other types can implement
// it.
//
// A Value tree is owned by whoever holds its root. Decode never aliases the
// input buffer, and encoding never modifies a Value.
type Value interface {
	// Type returns the variant of the value.
	Type() Type

	value()
}

// ByteString is a CBOR byte string (major type 2).
type ByteString []byte

// TextString is a CBOR text string (major type 3). It is expected to be UTF-8,
// but this is not validated when encoding or decoding.
type TextString string

// Array is a CBOR array (major type 4).
type Array []Value

// Map is a CBOR map (major type 5). Pairs keep their insertion or decoded
// order. Duplicate keys are allowed; encoding sorts a copy of the pairs.
type Map []Pair

// Pair is one key-value entry of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// Tag is a tagged CBOR item (major type 6). Content must not be nil.
type Tag struct {
	Number  uint64 // 0..(2**64)-1
	Content Value
}

func (ByteString) Type() Type { return TypeByteString }
func (TextString) Type() Type { return TypeTextString }
func (Array) Type() Type      { return TypeArray }
func (Map) Type() Type        { return TypeMap }
func (Tag) Type() Type        { return TypeTag }

func (ByteString) value() {}
func (TextString) value() {}
func (Array) value()      {}
func (Map) value()        {}
func (Tag) value()        {}

// Get returns the value of the first pair whose key is Equal to key.
func (m Map) Get(key Value) (Value, bool) {
	for _, p := range m {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// GetText returns the value of the first pair with a text string key equal to
// key.
func (m Map) GetText(key string) (Value, bool) { return m.Get(TextString(key)) }

// GetInt returns the value of the first pair with an integer key equal to key.
func (m Map) GetInt(key int64) (Value, bool) { return m.Get(NewInt(key)) }

// Equal reports whether two values are structurally identical. Array elements
// and map pairs are compared in order. Floats are compared by width and bit
// pattern, so +0.0 and -0.0 differ and a NaN equals an identical NaN.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case Int, Float, Simple:
		return a == b
	case ByteString:
		b, ok := b.(ByteString)
		return ok && bytes.Equal(a, b)
	case TextString:
		b, ok := b.(TextString)
		return ok && a == b
	case Array:
		b, ok := b.(Array)
		return ok && slices.EqualFunc(a, b, Equal)
	case Map:
		b, ok := b.(Map)
		return ok && slices.EqualFunc(a, b, func(x, y Pair) bool {
			return Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
		})
	case Tag:
		b, ok := b.(Tag)
		return ok && a.Number == b.Number && Equal(a.Content, b.Content)
	}
	return false
}

// Canonical returns a deep copy of v where every map has its pairs sorted in
// the order used by the encoder. Decoding the encoding of v is Equal to
// Canonical(v).
func Canonical(v Value) Value {
	switch v := v.(type) {
	case ByteString:
		return slices.Clone(v)
	case Array:
		out := make(Array, len(v))
		for i, elem := range v {
			out[i] = Canonical(elem)
		}
		return out
	case Map:
		out := make(Map, len(v))
		for i, p := range v {
			out[i] = Pair{Key: Canonical(p.Key), Value: Canonical(p.Value)}
		}
		sortPairs(out)
		return out
	case Tag:
		return Tag{Number: v.Number, Content: Canonical(v.Content)}
	default:
		return v
	}
}
