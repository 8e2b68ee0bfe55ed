// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package schema

import (
	"fmt"

	"github.com/fido-device-onboard/go-cbor/cbor"
)

// Field describes how one field of T is stored in a map.
type Field[T any] struct {
	name     string
	alias    int64
	mode     KeyMode
	optional bool
	text     bool // string fields: encode as a text string

	isZero func(*T) bool
	encode func(b *cbor.Builder, v *T, text bool) error
	decode func(view cbor.View, v *T, text bool) error
}

func (f Field[T]) key() cbor.Value {
	if f.mode == TextKeys {
		return cbor.TextString(f.name)
	}
	return cbor.NewInt(f.alias)
}

// Optional returns a copy of the field which is omitted when encoding a zero
// value and may be missing when decoding.
func (f Field[T]) Optional() Field[T] {
	f.optional = true
	return f
}

// AsBytes returns a copy of a string field which is encoded as a byte string.
func (f Field[T]) AsBytes() Field[T] {
	f.text = false
	return f
}

// AsText returns a copy of a string field which is encoded as a text string.
func (f Field[T]) AsText() Field[T] {
	f.text = true
	return f
}

func mismatch(expected string, view cbor.View) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, expected, view.Type())
}

// Int maps a signed integer field.
func Int[T any](name string, alias int64, get func(*T) *int64) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return *get(v) == 0 },
		encode: func(b *cbor.Builder, v *T, _ bool) error { return b.PushInt(*get(v)) },
		decode: func(view cbor.View, v *T, _ bool) error {
			i, ok := view.Int()
			if !ok {
				return mismatch("int", view)
			}
			n, ok := i.Int64()
			if !ok {
				return fmt.Errorf("%w: %s overflows int64", ErrTypeMismatch, i)
			}
			*get(v) = n
			return nil
		},
	}
}

// Uint maps an unsigned integer field.
func Uint[T any](name string, alias int64, get func(*T) *uint64) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return *get(v) == 0 },
		encode: func(b *cbor.Builder, v *T, _ bool) error { return b.PushUint(*get(v)) },
		decode: func(view cbor.View, v *T, _ bool) error {
			i, ok := view.Int()
			if !ok {
				return mismatch("uint", view)
			}
			n, ok := i.Uint64()
			if !ok {
				return fmt.Errorf("%w: %s is negative", ErrTypeMismatch, i)
			}
			*get(v) = n
			return nil
		},
	}
}

// Float maps a float field, which is encoded at the narrowest exact width.
func Float[T any](name string, alias int64, get func(*T) *float64) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return *get(v) == 0 },
		encode: func(b *cbor.Builder, v *T, _ bool) error {
			return b.PushFloat(cbor.NewFloatShortest(*get(v)))
		},
		decode: func(view cbor.View, v *T, _ bool) error {
			f, ok := view.Float()
			if !ok {
				return mismatch("float", view)
			}
			*get(v) = f.Float64()
			return nil
		},
	}
}

// Bool maps a boolean field.
func Bool[T any](name string, alias int64, get func(*T) *bool) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return !*get(v) },
		encode: func(b *cbor.Builder, v *T, _ bool) error { return b.PushBool(*get(v)) },
		decode: func(view cbor.View, v *T, _ bool) error {
			x, ok := view.Bool()
			if !ok {
				return mismatch("bool", view)
			}
			*get(v) = x
			return nil
		},
	}
}

// Text maps a string field, encoded as a text string unless AsBytes is used.
func Text[T any](name string, alias int64, get func(*T) *string) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		text:   true,
		isZero: func(v *T) bool { return *get(v) == "" },
		encode: func(b *cbor.Builder, v *T, text bool) error {
			if text {
				return b.PushTextString(*get(v))
			}
			return b.PushByteString([]byte(*get(v)))
		},
		decode: func(view cbor.View, v *T, text bool) error {
			s, ok := viewString(view, text)
			if !ok {
				return mismatch(stringType(text), view)
			}
			*get(v) = string(s)
			return nil
		},
	}
}

// Bytes maps a byte slice field, encoded as a byte string unless AsText is
// used. Decoded bytes are copied.
func Bytes[T any](name string, alias int64, get func(*T) *[]byte) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return len(*get(v)) == 0 },
		encode: func(b *cbor.Builder, v *T, text bool) error {
			if text {
				return b.PushTextString(string(*get(v)))
			}
			return b.PushByteString(*get(v))
		},
		decode: func(view cbor.View, v *T, text bool) error {
			s, ok := viewString(view, text)
			if !ok {
				return mismatch(stringType(text), view)
			}
			*get(v) = append([]byte(nil), s...)
			return nil
		},
	}
}

func viewString(view cbor.View, text bool) ([]byte, bool) {
	if text {
		return view.Text()
	}
	return view.Bytes()
}

func stringType(text bool) string {
	if text {
		return "tstr"
	}
	return "bstr"
}

// Any maps a field holding an arbitrary item. A nil value is zero.
func Any[T any](name string, alias int64, get func(*T) *cbor.Value) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return *get(v) == nil },
		encode: func(b *cbor.Builder, v *T, _ bool) error { return b.Push(*get(v)) },
		decode: func(view cbor.View, v *T, _ bool) error {
			x, err := view.Value()
			if err != nil {
				return err
			}
			*get(v) = x
			return nil
		},
	}
}

// Nested maps a pointer field to a map encoded by another Codec. A nil
// pointer is zero. Decoding allocates the value if the pointer is nil.
func Nested[T, U any](name string, alias int64, c *Codec[U], get func(*T) **U) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return *get(v) == nil },
		encode: func(b *cbor.Builder, v *T, _ bool) error {
			u := *get(v)
			if u == nil {
				return fmt.Errorf("%w: nil %q", ErrMissingField, name)
			}
			return c.Encode(b, u)
		},
		decode: func(view cbor.View, v *T, _ bool) error {
			p := get(v)
			if *p == nil {
				*p = new(U)
			}
			return c.Decode(view, *p)
		},
	}
}

// List maps a slice field to an array of maps encoded by another Codec.
func List[T, U any](name string, alias int64, c *Codec[U], get func(*T) *[]U) Field[T] {
	return Field[T]{
		name:   name,
		alias:  alias,
		isZero: func(v *T) bool { return len(*get(v)) == 0 },
		encode: func(b *cbor.Builder, v *T, _ bool) error {
			if err := b.Enter(cbor.ArrayContainer); err != nil {
				return err
			}
			for i := range *get(v) {
				if err := c.Encode(b, &(*get(v))[i]); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
			return b.Leave()
		},
		decode: func(view cbor.View, v *T, _ bool) error {
			it, ok := view.Array()
			if !ok {
				return mismatch("array", view)
			}
			list := make([]U, 0, it.Remaining())
			for elem, ok := it.Next(); ok; elem, ok = it.Next() {
				var u U
				if err := c.Decode(elem, &u); err != nil {
					return fmt.Errorf("item %d: %w", len(list), err)
				}
				list = append(list, u)
			}
			*get(v) = list
			return nil
		},
	}
}
