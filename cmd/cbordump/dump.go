// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fido-device-onboard/go-cbor/cbor"
)

const (
	commentColumn = 28
	bytesPerLine  = 16
)

// dump writes one line per head of a well-formed item, followed by the
// content of strings in rows of hex, each annotated with its meaning.
func dump(w io.Writer, v cbor.View) error { return dumpItem(w, v, 0) }

func dumpItem(w io.Writer, v cbor.View, depth int) error {
	raw := v.Raw()
	if err := dumpLine(w, depth, headHex(raw[:v.HeadLen()]), describeHead(v)); err != nil {
		return err
	}

	switch v.Type() {
	case cbor.TypeByteString:
		b, _ := v.Bytes()
		for row := range slices.Chunk(b, bytesPerLine) {
			if err := dumpLine(w, depth+1, hex.EncodeToString(row), ""); err != nil {
				return err
			}
		}

	case cbor.TypeTextString:
		s, _ := v.Text()
		for row := range slices.Chunk(s, bytesPerLine) {
			if err := dumpLine(w, depth+1, hex.EncodeToString(row), strconv.Quote(string(row))); err != nil {
				return err
			}
		}

	case cbor.TypeArray:
		for elem := range v.Elements() {
			if err := dumpItem(w, elem, depth+1); err != nil {
				return err
			}
		}

	case cbor.TypeMap:
		for key, val := range v.Pairs() {
			if err := dumpItem(w, key, depth+1); err != nil {
				return err
			}
			if err := dumpItem(w, val, depth+1); err != nil {
				return err
			}
		}

	case cbor.TypeTag:
		_, content, _ := v.Tagged()
		return dumpItem(w, content, depth+1)
	}
	return nil
}

func dumpLine(w io.Writer, depth int, hexText, comment string) error {
	left := strings.Repeat("   ", depth) + hexText
	if comment == "" {
		_, err := fmt.Fprintln(w, left)
		return err
	}
	_, err := fmt.Fprintf(w, "%-*s # %s%s\n", commentColumn, left, strings.Repeat("  ", depth), comment)
	return err
}

func headHex(head []byte) string {
	if len(head) == 1 {
		return hex.EncodeToString(head)
	}
	return hex.EncodeToString(head[:1]) + " " + hex.EncodeToString(head[1:])
}

func describeHead(v cbor.View) string {
	switch v.Type() {
	case cbor.TypeInt:
		i, _ := v.Int()
		if i.IsNegative() {
			return "negative(" + i.String() + ")"
		}
		return "unsigned(" + i.String() + ")"
	case cbor.TypeByteString:
		n, _ := v.Len()
		return fmt.Sprintf("bytes(%d)", n)
	case cbor.TypeTextString:
		n, _ := v.Len()
		return fmt.Sprintf("text(%d)", n)
	case cbor.TypeArray:
		n, _ := v.Len()
		return fmt.Sprintf("array(%d)", n)
	case cbor.TypeMap:
		n, _ := v.Len()
		return fmt.Sprintf("map(%d)", n)
	case cbor.TypeTag:
		number, _, _ := v.Tagged()
		return fmt.Sprintf("tag(%d)", number)
	case cbor.TypeFloat:
		f, _ := v.Float()
		return fmt.Sprintf("float%d(%s)", f.Width*8, f)
	case cbor.TypeSimple:
		s, _ := v.Simple()
		return s.String()
	default:
		return v.Type().String()
	}
}
