// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"errors"
	"fmt"
	"iter"
)

// View is a read-only, zero-copy cursor over one encoded CBOR item. Types and
// scalars are derived from the encoded bytes on demand, and nested items are
// returned as further Views of the same buffer.
//
// A View aliases the buffer it was created from. The buffer must not be
// modified while the View, or any View or iterator derived from it, is in
// use.
type View struct {
	data []byte
}

// NewView checks that data is exactly one well-formed item and returns a View
// of it. Any error wraps ErrMalformed as well as the *SyntaxError reported by
// Wellformed, so the specific kind (such as ErrIndefiniteLength) can still be
// tested with errors.Is.
func NewView(data []byte) (View, error) {
	if err := Wellformed(data); err != nil {
		if errors.Is(err, ErrMalformed) {
			return View{}, err
		}
		return View{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return View{data: data}, nil
}

// head parses the initial bytes, which were validated by NewView.
func (v View) head() (head, int, bool) {
	if len(v.data) == 0 {
		return head{}, 0, false
	}
	h, next, err := readHead(v.data, 0)
	return h, next, err == nil
}

// Raw returns the encoded item.
func (v View) Raw() []byte { return v.data }

// HeadLen returns the number of bytes in the head of the item, or zero for a
// zero View. The content of the item follows at Raw()[HeadLen():].
func (v View) HeadLen() int {
	_, next, ok := v.head()
	if !ok {
		return 0
	}
	return next
}

// Value decodes the item into a newly allocated Value.
func (v View) Value() (Value, error) { return Decode(v.data) }

// Type returns the type of the item or TypeInvalid for a zero View.
func (v View) Type() Type {
	h, _, ok := v.head()
	if !ok {
		return TypeInvalid
	}
	switch h.major {
	case unsignedIntMajorType, negativeIntMajorType:
		return TypeInt
	case byteStringMajorType:
		return TypeByteString
	case textStringMajorType:
		return TypeTextString
	case arrayMajorType:
		return TypeArray
	case mapMajorType:
		return TypeMap
	case tagMajorType:
		return TypeTag
	}
	if h.ai >= halfFloat {
		return TypeFloat
	}
	return TypeSimple
}

// Int returns the integer value if the item is an integer.
func (v View) Int() (Int, bool) {
	h, _, ok := v.head()
	switch {
	case !ok:
		return Int{}, false
	case h.major == unsignedIntMajorType:
		return NewUint(h.arg), true
	case h.major == negativeIntMajorType:
		return NewNegInt(h.arg), true
	}
	return Int{}, false
}

// Bytes returns the contents of a byte string. The slice aliases the buffer.
func (v View) Bytes() ([]byte, bool) { return v.str(byteStringMajorType) }

// Text returns the contents of a text string. The slice aliases the buffer
// and is not validated as UTF-8.
func (v View) Text() ([]byte, bool) { return v.str(textStringMajorType) }

func (v View) str(majorType byte) ([]byte, bool) {
	h, next, ok := v.head()
	if !ok || h.major != majorType {
		return nil, false
	}
	end := next + int(h.arg)
	return v.data[next:end:end], true
}

// Len returns the length of a string or the number of items of an array or
// pairs of a map.
func (v View) Len() (uint64, bool) {
	h, _, ok := v.head()
	if !ok {
		return 0, false
	}
	switch h.major {
	case byteStringMajorType, textStringMajorType, arrayMajorType, mapMajorType:
		return h.arg, true
	}
	return 0, false
}

// Simple returns the simple value if the item is a simple value.
func (v View) Simple() (Simple, bool) {
	h, _, ok := v.head()
	if !ok || h.major != simpleMajorType || h.ai >= halfFloat {
		return 0, false
	}
	return Simple(h.arg), true
}

// Bool returns the boolean value if the item is true or false.
func (v View) Bool() (value, ok bool) {
	s, ok := v.Simple()
	if !ok {
		return false, false
	}
	return s.Bool()
}

// Float returns the float value if the item is a half, single, or double
// precision float.
func (v View) Float() (Float, bool) {
	h, _, ok := v.head()
	if !ok || h.major != simpleMajorType {
		return Float{}, false
	}
	switch h.ai {
	case halfFloat:
		return Float{Width: Half, Bits: h.arg}, true
	case singleFloat:
		return Float{Width: Single, Bits: h.arg}, true
	case doubleFloat:
		return Float{Width: Double, Bits: h.arg}, true
	}
	return Float{}, false
}

// Tagged returns the tag number and content if the item is a tag.
func (v View) Tagged() (uint64, View, bool) {
	h, next, ok := v.head()
	if !ok || h.major != tagMajorType {
		return 0, View{}, false
	}
	return h.arg, View{data: v.data[next:]}, true
}

// Array returns an iterator over the items of an array.
func (v View) Array() (*ArrayIter, bool) {
	h, next, ok := v.head()
	if !ok || h.major != arrayMajorType {
		return nil, false
	}
	return &ArrayIter{data: v.data, off: next, remaining: h.arg}, true
}

// Map returns an iterator over the pairs of a map.
func (v View) Map() (*MapIter, bool) {
	h, next, ok := v.head()
	if !ok || h.major != mapMajorType {
		return nil, false
	}
	return &MapIter{items: ArrayIter{data: v.data, off: next, remaining: 2 * h.arg}}, true
}

// Elements returns a sequence of the items of an array. It is empty if the
// item is not an array.
func (v View) Elements() iter.Seq[View] {
	return func(yield func(View) bool) {
		it, ok := v.Array()
		if !ok {
			return
		}
		for elem, ok := it.Next(); ok; elem, ok = it.Next() {
			if !yield(elem) {
				return
			}
		}
	}
}

// Pairs returns a sequence of the key-value pairs of a map. It is empty if
// the item is not a map.
func (v View) Pairs() iter.Seq2[View, View] {
	return func(yield func(View, View) bool) {
		it, ok := v.Map()
		if !ok {
			return
		}
		for key, val, ok := it.Next(); ok; key, val, ok = it.Next() {
			if !yield(key, val) {
				return
			}
		}
	}
}

// ArrayIter iterates over the items of an array View.
type ArrayIter struct {
	data      []byte
	off       int
	remaining uint64
}

// Next returns the next item or false when there are no more items.
func (it *ArrayIter) Next() (View, bool) {
	if it.remaining == 0 {
		return View{}, false
	}
	end, err := skip(it.data, it.off, 0)
	if err != nil {
		it.remaining = 0
		return View{}, false
	}
	item := View{data: it.data[it.off:end:end]}
	it.off, it.remaining = end, it.remaining-1
	return item, true
}

// Remaining returns the number of items not yet returned by Next.
func (it *ArrayIter) Remaining() uint64 { return it.remaining }

// MapIter iterates over the pairs of a map View.
type MapIter struct {
	items ArrayIter
}

// Next returns the next key and value or false when there are no more pairs.
func (it *MapIter) Next() (key, val View, ok bool) {
	if key, ok = it.items.Next(); !ok {
		return View{}, View{}, false
	}
	if val, ok = it.items.Next(); !ok {
		return View{}, View{}, false
	}
	return key, val, true
}

// Remaining returns the number of pairs not yet returned by Next.
func (it *MapIter) Remaining() uint64 { return it.items.remaining / 2 }
