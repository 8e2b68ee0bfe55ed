// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"unicode"

	fxcbor "github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/term"

	"github.com/fido-device-onboard/go-cbor/cbor"
	"github.com/fido-device-onboard/go-cbor/cbor/cdn"
)

// Output modes
const (
	modeDiag  = "diag"
	modeDump  = "dump"
	modeJSON  = "json"
	modeCanon = "canon"
)

var (
	errTrailingData = fmt.Errorf("%w: trailing data after the first item", cbor.ErrMalformed)
	errNoInput      = errors.New("no input")
	errInteractive  = errors.New("refusing to read CBOR from a terminal, give a file or pipe the input")
	errVerify       = errors.New("rejected by the reference decoder")
)

type config struct {
	path      string
	mode      string
	expr      string
	hexInput  bool
	seq       bool
	binary    bool
	color     bool
	digest    bool
	verify    bool
	maxLength uint64
}

func (c *config) check() error {
	switch c.mode {
	case modeDiag, modeDump, modeJSON, modeCanon:
	default:
		return fmt.Errorf("unknown mode %q", c.mode)
	}
	if c.expr != "" && c.path != "" {
		return errors.New("--expr cannot be used with an input file")
	}
	if c.expr != "" && c.hexInput {
		return errors.New("--expr cannot be used with --hex")
	}
	if c.binary && c.mode != modeCanon {
		return errors.New("--binary is only valid in canon mode")
	}
	return nil
}

// input opens the source of CBOR bytes selected by the config.
func (c *config) input(stdin io.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }

	if c.expr != "" {
		data, err := cdn.ToCBOR(c.expr)
		if err != nil {
			return nil, nil, err
		}
		return bytes.NewReader(data), noop, nil
	}

	r, closer := stdin, noop
	if c.path != "" && c.path != "-" {
		f, err := os.Open(c.path)
		if err != nil {
			return nil, nil, err
		}
		r, closer = f, f.Close
	} else if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) && !c.hexInput {
		return nil, nil, errInteractive
	}

	if !c.hexInput {
		return r, closer, nil
	}
	text, err := io.ReadAll(r)
	_ = closer()
	if err != nil {
		return nil, nil, err
	}
	data, err := hex.DecodeString(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(text)))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return bytes.NewReader(data), noop, nil
}

// run reads every item from the input and writes it to out.
func (c *config) run(stdin io.Reader, out io.Writer) error {
	r, closer, err := c.input(stdin)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	dec := cbor.NewDecoder(r)
	dec.MaxLength = c.maxLength

	var reference fxcbor.DecMode
	if c.verify {
		opts := fxcbor.DecOptions{
			MaxNestedLevels:  65535,
			MaxArrayElements: math.MaxInt32,
			MaxMapPairs:      math.MaxInt32,
			UTF8:             fxcbor.UTF8DecodeInvalid,
		}
		if reference, err = opts.DecMode(); err != nil {
			return err
		}
	}

	for n := 0; ; n++ {
		if n > 0 && !c.seq {
			return checkTrailing(r)
		}
		raw, err := dec.DecodeRaw()
		if errors.Is(err, io.EOF) {
			if n == 0 && !c.seq {
				return errNoInput
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("item %d: %w", n, err)
		}
		slog.Debug("decoded item", "index", n, "offset", dec.InputOffset()-len(raw), "size", len(raw))

		if c.verify {
			if err := reference.Wellformed(raw); err != nil {
				return fmt.Errorf("item %d: %w: %v", n, errVerify, err)
			}
		}
		if err := c.write(out, raw); err != nil {
			return fmt.Errorf("item %d: %w", n, err)
		}
	}
}

// checkTrailing fails if any byte follows the first item. The bytes are not
// decoded, so garbage after the item is reported as trailing data.
func checkTrailing(r io.Reader) error {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	switch {
	case err == nil:
		return errTrailingData
	case errors.Is(err, io.EOF):
		return nil
	default:
		return err
	}
}

// write formats one well-formed item.
func (c *config) write(out io.Writer, raw cbor.RawBytes) error {
	v, err := cbor.Decode(raw)
	if err != nil {
		return err
	}
	canonical, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	if !bytes.Equal(canonical, raw) {
		slog.Debug("item is not canonical", "size", len(raw), "canonical size", len(canonical))
	}

	switch c.mode {
	case modeDiag:
		s, err := cdn.Format(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, s)
		if err != nil {
			return err
		}
	case modeDump:
		view, err := raw.View()
		if err != nil {
			return err
		}
		if err := dump(out, view); err != nil {
			return err
		}
	case modeJSON:
		if err := writeJSON(out, v, c.color); err != nil {
			return err
		}
	case modeCanon:
		if c.binary {
			_, err = out.Write(canonical)
		} else {
			_, err = fmt.Fprintln(out, hex.EncodeToString(canonical))
		}
		if err != nil {
			return err
		}
	}

	if c.digest {
		sum := blake2b.Sum256(canonical)
		if _, err := fmt.Fprintf(out, "blake2b-256: %x\n", sum); err != nil {
			return err
		}
	}
	return nil
}
