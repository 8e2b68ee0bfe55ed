// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package schema maps Go structs to and from CBOR maps using explicit field
// tables instead of reflection.
//
// Each field of a table names both a text key and an integer alias, so the
// same table can encode the compact integer-keyed form used by CTAP2 and
// COSE as well as a readable text-keyed form:
//
//	type Options struct {
//		RK bool
//		UV bool
//	}
//
//	var optionsCodec = schema.MustNew(schema.TextKeys,
//		schema.Bool("rk", 0, func(o *Options) *bool { return &o.RK }).Optional(),
//		schema.Bool("uv", 0, func(o *Options) *bool { return &o.UV }).Optional(),
//	)
//
// Maps are encoded with a cbor.Builder in canonical key order and decoded
// from a cbor.View without building a Value tree. Decoding is strict:
// duplicate keys, missing required fields, and values of the wrong type are
// errors. Unknown keys are skipped and logged at debug level.
package schema

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/fido-device-onboard/go-cbor/cbor"
	"github.com/fido-device-onboard/go-cbor/cbor/cdn"
)

// Sentinel errors
var (
	ErrDuplicateKey   = errors.New("schema: duplicate map key")
	ErrMissingField   = errors.New("schema: missing required field")
	ErrTypeMismatch   = errors.New("schema: unexpected type")
	ErrDuplicateField = errors.New("schema: duplicate field definition")
)

// KeyMode selects which key of each field is written and matched.
type KeyMode uint8

// Key modes
const (
	// IntKeys uses the integer alias of each field.
	IntKeys KeyMode = iota
	// TextKeys uses the name of each field.
	TextKeys
)

func (m KeyMode) String() string {
	switch m {
	case IntKeys:
		return "int"
	case TextKeys:
		return "text"
	default:
		return fmt.Sprintf("KeyMode(%d)", uint8(m))
	}
}

// Codec encodes values of type T as CBOR maps.
type Codec[T any] struct {
	mode   KeyMode
	fields []Field[T] // in canonical key order
	keys   []cbor.Value
}

// New returns a Codec for the given fields. Field names and, in IntKeys mode,
// integer aliases must be unique.
func New[T any](mode KeyMode, fields ...Field[T]) (*Codec[T], error) {
	c := &Codec[T]{mode: mode, fields: slices.Clone(fields)}
	for i := range c.fields {
		c.fields[i].mode = mode
	}
	slices.SortStableFunc(c.fields, func(a, b Field[T]) int { return compareKeys(a.key(), b.key()) })
	for i, f := range c.fields {
		k := f.key()
		if i > 0 && cbor.Equal(k, c.keys[i-1]) {
			return nil, fmt.Errorf("%w: key %v of %q", ErrDuplicateField, k, f.name)
		}
		c.keys = append(c.keys, k)
	}
	return c, nil
}

// MustNew is like New, but panics on error. It is meant for package level
// codec variables.
func MustNew[T any](mode KeyMode, fields ...Field[T]) *Codec[T] {
	c, err := New(mode, fields...)
	if err != nil {
		panic(err)
	}
	return c
}

// Marshal encodes v as a canonical CBOR map.
func (c *Codec[T]) Marshal(v *T) ([]byte, error) {
	b := cbor.NewBuilder()
	if err := c.Encode(b, v); err != nil {
		return nil, err
	}
	return b.Finish()
}

// Encode pushes v as a map onto a Builder, so that it can be nested in other
// items under construction. If a field cannot be encoded, the Builder is
// aborted and returns the error from every later call.
func (c *Codec[T]) Encode(b *cbor.Builder, v *T) error {
	if err := b.Enter(cbor.MapContainer); err != nil {
		return err
	}
	for i, f := range c.fields {
		if f.optional && f.isZero(v) {
			continue
		}
		if err := b.Push(c.keys[i]); err != nil {
			return err
		}
		if err := f.encode(b, v, f.text); err != nil {
			err = fmt.Errorf("error encoding field %q: %w", f.name, err)
			b.Abort(err)
			return err
		}
	}
	return b.Leave()
}

// Unmarshal decodes a CBOR map into v. Optional fields missing from the map
// are left unchanged.
func (c *Codec[T]) Unmarshal(data []byte, v *T) error {
	view, err := cbor.NewView(data)
	if err != nil {
		return err
	}
	return c.Decode(view, v)
}

// Decode decodes the map at a View into v.
func (c *Codec[T]) Decode(view cbor.View, v *T) error {
	it, ok := view.Map()
	if !ok {
		return fmt.Errorf("%w: expected map, got %s", ErrTypeMismatch, view.Type())
	}

	seen := make(map[string]struct{}, it.Remaining())
	found := make([]bool, len(c.fields))
	for key, val, ok := it.Next(); ok; key, val, ok = it.Next() {
		if _, dup := seen[string(key.Raw())]; dup {
			return fmt.Errorf("%w: % x", ErrDuplicateKey, key.Raw())
		}
		seen[string(key.Raw())] = struct{}{}

		i := c.lookup(key)
		if i < 0 {
			slog.Debug("schema: skipping unknown key", "mode", c.mode, "key", diag(key.Raw()))
			continue
		}
		f := c.fields[i]
		if found[i] {
			// Same key with a non-minimal head
			return fmt.Errorf("%w: field %q", ErrDuplicateKey, f.name)
		}
		found[i] = true
		if err := f.decode(val, v, f.text); err != nil {
			return fmt.Errorf("error decoding field %q: %w", f.name, err)
		}
	}

	for i, f := range c.fields {
		if !found[i] && !f.optional {
			return fmt.Errorf("%w: %q", ErrMissingField, f.name)
		}
	}
	return nil
}

func (c *Codec[T]) lookup(key cbor.View) int {
	var k cbor.Value
	switch c.mode {
	case IntKeys:
		i, ok := key.Int()
		if !ok {
			return -1
		}
		k = i
	case TextKeys:
		s, ok := key.Text()
		if !ok {
			return -1
		}
		k = cbor.TextString(s)
	}
	i, ok := slices.BinarySearchFunc(c.keys, k, compareKeys)
	if !ok {
		return -1
	}
	return i
}

func compareKeys(a, b cbor.Value) int {
	switch {
	case cbor.Less(a, b):
		return -1
	case cbor.Less(b, a):
		return 1
	default:
		return 0
	}
}

// diag formats an encoded item in diagnostic notation when it is logged.
type diag []byte

func (d diag) LogValue() slog.Value {
	s, err := cdn.FromCBOR(d)
	if err != nil {
		return slog.StringValue(hex.EncodeToString(d))
	}
	return slog.StringValue(s)
}
