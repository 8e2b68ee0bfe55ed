// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package schema_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/fido-device-onboard/go-cbor/cbor"
	"github.com/fido-device-onboard/go-cbor/cbor/schema"
	"github.com/fido-device-onboard/go-cbor/internal/testlog"
)

type rpEntity struct {
	ID   string
	Name string
}

type credParam struct {
	Type string
	Alg  int64
}

type options struct {
	RK bool
	UV bool
}

type request struct {
	ClientDataHash []byte
	RP             *rpEntity
	Params         []credParam
	Options        *options
	PinProtocol    uint64
	Extra          cbor.Value
}

var (
	rpCodec = schema.MustNew(schema.TextKeys,
		schema.Text("id", 0, func(rp *rpEntity) *string { return &rp.ID }),
		schema.Text("name", 0, func(rp *rpEntity) *string { return &rp.Name }).Optional(),
	)
	paramCodec = schema.MustNew(schema.TextKeys,
		schema.Text("type", 0, func(p *credParam) *string { return &p.Type }),
		schema.Int("alg", 0, func(p *credParam) *int64 { return &p.Alg }),
	)
	optionsCodec = schema.MustNew(schema.TextKeys,
		schema.Bool("rk", 0, func(o *options) *bool { return &o.RK }).Optional(),
		schema.Bool("uv", 0, func(o *options) *bool { return &o.UV }).Optional(),
	)
)

func requestFields() []schema.Field[request] {
	return []schema.Field[request]{
		schema.Uint("pinUvAuthProtocol", 9, func(r *request) *uint64 { return &r.PinProtocol }).Optional(),
		schema.Bytes("clientDataHash", 1, func(r *request) *[]byte { return &r.ClientDataHash }),
		schema.Nested("rp", 2, rpCodec, func(r *request) **rpEntity { return &r.RP }),
		schema.List("pubKeyCredParams", 4, paramCodec, func(r *request) *[]credParam { return &r.Params }),
		schema.Nested("options", 7, optionsCodec, func(r *request) **options { return &r.Options }).Optional(),
		schema.Any("extra", 10, func(r *request) *cbor.Value { return &r.Extra }).Optional(),
	}
}

func sampleRequest() *request {
	return &request{
		ClientDataHash: []byte{0x01, 0x02, 0x03},
		RP:             &rpEntity{ID: "a.b"},
		Params:         []credParam{{Type: "public-key", Alg: -7}},
		Options:        &options{RK: true},
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestMarshalIntKeys(t *testing.T) {
	c, err := schema.New(schema.IntKeys, requestFields()...)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Marshal(sampleRequest())
	if err != nil {
		t.Fatal(err)
	}
	expect := mustHex(t, "a4"+
		"01 43 010203"+
		"02 a1 626964 63612e62"+
		"04 81 a2 63616c67 26 6474797065 6a7075626c69632d6b6579"+
		"07 a1 62726b f5")
	if !bytes.Equal(got, expect) {
		t.Errorf("expected % x, got % x", expect, got)
	}

	var req request
	if err := c.Unmarshal(got, &req); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(req.ClientDataHash, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("clientDataHash: got % x", req.ClientDataHash)
	}
	if req.RP == nil || req.RP.ID != "a.b" || req.RP.Name != "" {
		t.Errorf("rp: got %+v", req.RP)
	}
	if len(req.Params) != 1 || req.Params[0] != (credParam{Type: "public-key", Alg: -7}) {
		t.Errorf("params: got %+v", req.Params)
	}
	if req.Options == nil || !req.Options.RK || req.Options.UV {
		t.Errorf("options: got %+v", req.Options)
	}
	if req.Extra != nil {
		t.Errorf("extra: expected nil, got %v", req.Extra)
	}
}

func TestMarshalTextKeys(t *testing.T) {
	c, err := schema.New(schema.TextKeys, requestFields()...)
	if err != nil {
		t.Fatal(err)
	}

	in := sampleRequest()
	in.PinProtocol = 2
	in.Extra = cbor.Array{cbor.NewInt(1)}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	view, err := cbor.NewView(data)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for key := range view.Pairs() {
		k, _ := key.Text()
		keys = append(keys, string(k))
	}
	expect := []string{"rp", "extra", "options", "clientDataHash", "pubKeyCredParams", "pinUvAuthProtocol"}
	if strings.Join(keys, ",") != strings.Join(expect, ",") {
		t.Errorf("expected keys %v, got %v", expect, keys)
	}

	var out request
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.PinProtocol != 2 {
		t.Errorf("expected pin protocol 2, got %d", out.PinProtocol)
	}
	if !cbor.Equal(out.Extra, in.Extra) {
		t.Errorf("expected extra %v, got %v", in.Extra, out.Extra)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	c := schema.MustNew(schema.IntKeys, requestFields()...)

	for _, test := range []struct {
		name   string
		input  string
		expect error
	}{
		{name: "not a map", input: "80", expect: schema.ErrTypeMismatch},
		{name: "duplicate key", input: "a2 01 4100 01 4100", expect: schema.ErrDuplicateKey},
		{name: "non-minimal duplicate key", input: "a2 01 4100 1801 4100", expect: schema.ErrDuplicateKey},
		{name: "missing field", input: "a1 01 4100", expect: schema.ErrMissingField},
		{name: "wrong type", input: "a3 01 6161 02 a1 626964 60 04 80", expect: schema.ErrTypeMismatch},
		{name: "wrong nested type", input: "a3 01 4100 02 a1 626964 01 04 80", expect: schema.ErrTypeMismatch},
		{name: "negative uint", input: "a4 01 4100 02 a1 626964 60 04 80 09 20", expect: schema.ErrTypeMismatch},
		{name: "malformed", input: "a3 01 4100", expect: cbor.ErrMalformed},
	} {
		t.Run(test.name, func(t *testing.T) {
			var req request
			if err := c.Unmarshal(mustHex(t, test.input), &req); !errors.Is(err, test.expect) {
				t.Errorf("expected %v, got %v", test.expect, err)
			}
		})
	}
}

func TestUnknownKeysLogged(t *testing.T) {
	logs := testlog.Default(t)
	c := schema.MustNew(schema.IntKeys, requestFields()...)

	// {1: h'00', 2: {"id": ""}, 4: [], 99: "x"}
	var req request
	if err := c.Unmarshal(mustHex(t, "a4 01 4100 02 a1 626964 60 04 80 1863 6178"), &req); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "key=99") {
		t.Errorf("expected unknown key to be logged, got %q", logs.String())
	}
}

func TestStringOverride(t *testing.T) {
	type user struct {
		Name string
		ID   []byte
	}
	c := schema.MustNew(schema.IntKeys,
		schema.Text("name", 1, func(u *user) *string { return &u.Name }).AsBytes(),
		schema.Bytes("id", 2, func(u *user) *[]byte { return &u.ID }).AsText(),
	)

	data, err := c.Marshal(&user{Name: "hi", ID: []byte("u1")})
	if err != nil {
		t.Fatal(err)
	}
	if expect := mustHex(t, "a2 01 426869 02 627531"); !bytes.Equal(data, expect) {
		t.Errorf("expected % x, got % x", expect, data)
	}

	var u user
	if err := c.Unmarshal(data, &u); err != nil {
		t.Fatal(err)
	}
	if u.Name != "hi" || string(u.ID) != "u1" {
		t.Errorf("got %+v", u)
	}

	if err := c.Unmarshal(mustHex(t, "a2 01 626869 02 627531"), &u); !errors.Is(err, schema.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestDuplicateField(t *testing.T) {
	type pair struct{ A, B int64 }
	_, err := schema.New(schema.IntKeys,
		schema.Int("a", 1, func(p *pair) *int64 { return &p.A }),
		schema.Int("b", 1, func(p *pair) *int64 { return &p.B }),
	)
	if !errors.Is(err, schema.ErrDuplicateField) {
		t.Errorf("expected ErrDuplicateField, got %v", err)
	}

	// Aliases are irrelevant when names are used
	if _, err := schema.New(schema.TextKeys,
		schema.Int("a", 1, func(p *pair) *int64 { return &p.A }),
		schema.Int("b", 1, func(p *pair) *int64 { return &p.B }),
	); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingNested(t *testing.T) {
	c := schema.MustNew(schema.IntKeys, requestFields()...)
	req := sampleRequest()
	req.RP = nil
	if _, err := c.Marshal(req); !errors.Is(err, schema.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

func TestEncodeFailureAbortsBuilder(t *testing.T) {
	c := schema.MustNew(schema.IntKeys, requestFields()...)
	req := sampleRequest()
	req.RP = nil

	b := cbor.NewBuilder()
	if err := b.Enter(cbor.ArrayContainer); err != nil {
		t.Fatal(err)
	}
	if err := c.Encode(b, req); !errors.Is(err, schema.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if b.Depth() != 0 {
		t.Errorf("expected open frames to be released, got depth %d", b.Depth())
	}
	if err := b.PushInt(1); !errors.Is(err, schema.ErrMissingField) {
		t.Errorf("expected sticky ErrMissingField, got %v", err)
	}
	if _, err := b.Finish(); !errors.Is(err, schema.ErrMissingField) {
		t.Errorf("expected Finish to return ErrMissingField, got %v", err)
	}
}

func TestFloatField(t *testing.T) {
	type reading struct{ Value float64 }
	c := schema.MustNew(schema.IntKeys,
		schema.Float("value", 0, func(r *reading) *float64 { return &r.Value }),
	)
	data, err := c.Marshal(&reading{Value: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if expect := mustHex(t, "a1 00 f93e00"); !bytes.Equal(data, expect) {
		t.Errorf("expected % x, got % x", expect, data)
	}
	var r reading
	if err := c.Unmarshal(data, &r); err != nil {
		t.Fatal(err)
	}
	if r.Value != 1.5 {
		t.Errorf("expected 1.5, got %v", r.Value)
	}
}
