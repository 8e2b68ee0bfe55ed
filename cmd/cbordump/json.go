// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"encoding/base64"
	"io"
	"log/slog"
	"math"

	"github.com/neilotoole/jsoncolor"

	"github.com/fido-device-onboard/go-cbor/cbor"
	"github.com/fido-device-onboard/go-cbor/cbor/cdn"
)

func writeJSON(out io.Writer, v cbor.Value, color bool) error {
	enc := jsoncolor.NewEncoder(out)
	enc.SetIndent("", "  ")
	if color {
		enc.SetColors(jsoncolor.DefaultColors())
	}
	return enc.Encode(jsonValue(v))
}

// jsonValue converts an item to a JSON value. Byte strings become unpadded
// base64url, tags are dropped in favor of their content, and values with no
// JSON equivalent become null.
func jsonValue(v cbor.Value) any {
	switch v := v.(type) {
	case cbor.Int:
		if i, ok := v.Int64(); ok {
			return i
		}
		if u, ok := v.Uint64(); ok {
			return u
		}
		return v.Big()

	case cbor.ByteString:
		return base64.RawURLEncoding.EncodeToString(v)

	case cbor.TextString:
		return string(v)

	case cbor.Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = jsonValue(elem)
		}
		return out

	case cbor.Map:
		out := make(map[string]any, len(v))
		for _, pair := range v {
			key := jsonKey(pair.Key)
			if _, dup := out[key]; dup {
				slog.Warn("json: keys collide after conversion, keeping the last", "key", key)
			}
			out[key] = jsonValue(pair.Value)
		}
		return out

	case cbor.Tag:
		return jsonValue(v.Content)

	case cbor.Float:
		f := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f

	case cbor.Simple:
		if b, ok := v.Bool(); ok {
			return b
		}
		return nil
	}
	return nil
}

// jsonKey uses text keys as is and diagnostic notation for any other key.
func jsonKey(k cbor.Value) string {
	if s, ok := k.(cbor.TextString); ok {
		return string(s)
	}
	s, err := cdn.Format(k)
	if err != nil {
		return k.Type().String()
	}
	return s
}
