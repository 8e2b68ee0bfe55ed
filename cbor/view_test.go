// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fido-device-onboard/go-cbor/cbor"
)

func TestView(t *testing.T) {
	// {1: "a", 2: 24(h'f5'), "k": [h'0102', -3, 1.5, null]}
	data := []byte{
		0xa3,
		0x01, 0x61, 0x61,
		0x02, 0xd8, 0x18, 0x41, 0xf5,
		0x61, 0x6b, 0x84, 0x42, 0x01, 0x02, 0x22, 0xf9, 0x3e, 0x00, 0xf6,
	}
	v, err := cbor.NewView(data)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type() != cbor.TypeMap {
		t.Fatalf("expected map, got %s", v.Type())
	}
	if n, ok := v.Len(); !ok || n != 3 {
		t.Fatalf("expected 3 pairs, got %d", n)
	}

	it, _ := v.Map()
	key, val, ok := it.Next()
	if !ok {
		t.Fatal("expected first pair")
	}
	if i, ok := key.Int(); !ok || i.Arg() != 1 {
		t.Errorf("expected key 1, got %v", i)
	}
	if s, ok := val.Text(); !ok || string(s) != "a" {
		t.Errorf("expected \"a\", got %q", s)
	}
	if it.Remaining() != 2 {
		t.Errorf("expected 2 remaining pairs, got %d", it.Remaining())
	}

	_, val, _ = it.Next()
	num, content, ok := val.Tagged()
	if !ok || num != cbor.TagEncodedCBOR {
		t.Fatalf("expected tag 24, got %d", num)
	}
	if b, ok := content.Bytes(); !ok || !bytes.Equal(b, []byte{0xf5}) {
		t.Errorf("expected h'f5', got % x", b)
	}

	key, val, _ = it.Next()
	if s, _ := key.Text(); string(s) != "k" {
		t.Errorf("expected key \"k\", got %q", s)
	}
	var types []cbor.Type
	for elem := range val.Elements() {
		types = append(types, elem.Type())
	}
	expect := []cbor.Type{cbor.TypeByteString, cbor.TypeInt, cbor.TypeFloat, cbor.TypeSimple}
	if len(types) != len(expect) {
		t.Fatalf("expected %v, got %v", expect, types)
	}
	for i := range expect {
		if types[i] != expect[i] {
			t.Errorf("element %d: expected %s, got %s", i, expect[i], types[i])
		}
	}

	if _, _, ok := it.Next(); ok {
		t.Error("expected iterator to be exhausted")
	}
}

func TestViewScalars(t *testing.T) {
	mustView := func(data ...byte) cbor.View {
		v, err := cbor.NewView(data)
		if err != nil {
			t.Fatalf("error creating view of % x: %v", data, err)
		}
		return v
	}

	if i, ok := mustView(0x38, 0x63).Int(); !ok || i.String() != "-100" {
		t.Errorf("expected -100, got %v", i)
	}
	if _, ok := mustView(0x61, 0x61).Int(); ok {
		t.Error("expected text string not to be an int")
	}
	if b, ok := mustView(0xf5).Bool(); !ok || !b {
		t.Error("expected true")
	}
	if _, ok := mustView(0xf6).Bool(); ok {
		t.Error("expected null not to be a bool")
	}
	if s, ok := mustView(0xf8, 0xff).Simple(); !ok || s != 255 {
		t.Errorf("expected simple(255), got %v", s)
	}
	if _, ok := mustView(0xf9, 0x3e, 0x00).Simple(); ok {
		t.Error("expected float not to be a simple value")
	}
	if f, ok := mustView(0xfa, 0x47, 0xc3, 0x50, 0x00).Float(); !ok || f.Width != cbor.Single || f.Float64() != 100000 {
		t.Errorf("expected single precision 100000, got %v", f)
	}
	if _, ok := mustView(0x80).Map(); ok {
		t.Error("expected array not to be a map")
	}

	var zero cbor.View
	if zero.Type() != cbor.TypeInvalid {
		t.Errorf("expected zero view to be invalid, got %s", zero.Type())
	}
}

func TestViewAliases(t *testing.T) {
	data := []byte{0x81, 0x43, 0x01, 0x02, 0x03}
	v, err := cbor.NewView(data)
	if err != nil {
		t.Fatal(err)
	}
	it, _ := v.Array()
	elem, _ := it.Next()
	b, _ := elem.Bytes()
	data[2] = 0xff
	if b[0] != 0xff {
		t.Error("expected view to alias its buffer")
	}
	if cap(b) != 3 {
		t.Errorf("expected capacity to be limited to the string, got %d", cap(b))
	}
}

func TestViewValue(t *testing.T) {
	data := []byte{0x82, 0x20, 0xa1, 0x00, 0xf4}
	v, err := cbor.NewView(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Value()
	if err != nil {
		t.Fatal(err)
	}
	expect := cbor.Array{cbor.NewInt(-1), cbor.Map{{Key: cbor.NewInt(0), Value: cbor.False}}}
	if !cbor.Equal(got, expect) {
		t.Errorf("expected %v, got %v", expect, got)
	}
	if !bytes.Equal(v.Raw(), data) {
		t.Errorf("expected raw % x, got % x", data, v.Raw())
	}
}

func TestNewViewInvalid(t *testing.T) {
	for _, test := range []struct {
		input  []byte
		expect error
	}{
		{input: []byte{0x81}, expect: cbor.ErrMalformed},
		{input: []byte{0x00, 0x00}, expect: cbor.ErrMalformed},
		{input: []byte{0x5f, 0xff}, expect: cbor.ErrIndefiniteLength},
		{input: []byte{0x9f, 0xff}, expect: cbor.ErrIndefiniteLength},
		{input: []byte{0x1c}, expect: cbor.ErrReservedAdditionalInformation},
		{input: []byte{0xf8, 0x00}, expect: cbor.ErrReservedSimpleValue},
		{input: []byte{0x81, 0xf8, 0x00}, expect: cbor.ErrReservedSimpleValue},
		{input: []byte{0xe0}, expect: cbor.ErrUnassigned},
	} {
		_, err := cbor.NewView(test.input)
		if !errors.Is(err, cbor.ErrMalformed) {
			t.Errorf("viewing % x; expected %v, got %v", test.input, cbor.ErrMalformed, err)
		}
		if !errors.Is(err, test.expect) {
			t.Errorf("viewing % x; expected %v, got %v", test.input, test.expect, err)
		}
		var se *cbor.SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("viewing % x; expected a *SyntaxError, got %T", test.input, err)
		}
	}
}

func TestViewHeadLen(t *testing.T) {
	for _, test := range []struct {
		input  []byte
		expect int
	}{
		{input: []byte{0x17}, expect: 1},
		{input: []byte{0x18, 0x18}, expect: 2},
		{input: []byte{0x39, 0x01, 0x00}, expect: 3},
		{input: []byte{0x58, 0x01, 0xff}, expect: 2},
		{input: []byte{0x63, 0x61, 0x62, 0x63}, expect: 1},
		{input: []byte{0x82, 0x01, 0x02}, expect: 1},
		{input: []byte{0xda, 0x00, 0x01, 0x00, 0x00, 0x00}, expect: 5},
		{input: []byte{0xf8, 0xff}, expect: 2},
		{input: []byte{0xfb, 0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, expect: 9},
	} {
		v, err := cbor.NewView(test.input)
		if err != nil {
			t.Fatalf("viewing % x: %v", test.input, err)
		}
		if got := v.HeadLen(); got != test.expect {
			t.Errorf("head of % x: expected %d bytes, got %d", test.input, test.expect, got)
		}
	}

	if got := (cbor.View{}).HeadLen(); got != 0 {
		t.Errorf("zero view: expected 0, got %d", got)
	}
}
