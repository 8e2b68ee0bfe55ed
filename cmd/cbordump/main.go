// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package main implements cbordump, a tool for inspecting and canonicalizing
// CBOR items.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/neilotoole/jsoncolor"
	"github.com/spf13/pflag"

	"github.com/fido-device-onboard/go-cbor/cbor"
)

var flags = pflag.NewFlagSet("cbordump", pflag.ContinueOnError)

var (
	debug   bool
	noColor bool
	cfg     config
)

func init() {
	flags.BoolVar(&debug, "debug", false, "Log each decoded item to stderr")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored JSON output")
	flags.StringVarP(&cfg.mode, "mode", "m", modeDiag, "Output `mode`: diag, dump, json, or canon")
	flags.BoolVarP(&cfg.hexInput, "hex", "x", false, "Input is hex encoded, whitespace is ignored")
	flags.StringVarP(&cfg.expr, "expr", "e", "", "Encode a diagnostic notation `item` instead of reading input")
	flags.BoolVarP(&cfg.seq, "seq", "s", false, "Input is a CBOR sequence of zero or more items")
	flags.BoolVarP(&cfg.binary, "binary", "b", false, "Write canon mode output as binary instead of hex")
	flags.Uint64Var(&cfg.maxLength, "max-length", cbor.DefaultMaxLength, "Maximum declared `length` of any string or container")
	flags.BoolVar(&cfg.digest, "digest", false, "Print the BLAKE2b-256 digest of the canonical encoding of each item")
	flags.BoolVar(&cfg.verify, "verify", false, "Check each item with a second, independent decoder")
	flags.Usage = usage
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `
Usage:
  cbordump [options] [file|-]

Reads one CBOR item (or a sequence with --seq) from a file or stdin and
writes it in the selected mode.

Options:
%s
Modes:
  - diag   diagnostic notation, one item per line
  - dump   annotated hex of every head and string
  - json   JSON, following RFC 8949 section 6.1
  - canon  canonical encoding
`, flags.FlagUsages())
}

func main() {
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		usage()
		os.Exit(1)
	}
	if debug {
		level.Set(slog.LevelDebug)
	}
	if flags.NArg() > 1 {
		_, _ = fmt.Fprintf(os.Stderr, "too many arguments: %q\n", flags.Args())
		usage()
		os.Exit(1)
	}
	cfg.path = flags.Arg(0)
	cfg.color = !noColor && cfg.mode == modeJSON && jsoncolor.IsColorTerminal(os.Stdout)
	if err := cfg.check(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		usage()
		os.Exit(1)
	}

	if err := cfg.run(os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "cbordump: %s\n", describe(err))
		os.Exit(2)
	}
}

var hints = []struct {
	err  error
	hint string
}{
	{cbor.ErrIndefiniteLength, "re-encode the input with definite lengths"},
	{cbor.ErrReservedAdditionalInformation, "additional information 28-30 is reserved, the input is probably not CBOR"},
	{cbor.ErrReservedSimpleValue, "simple values below 32 must use the one byte encoding"},
	{cbor.ErrUnassigned, "simple values 0-19 have no assigned meaning"},
	{cbor.ErrNestingDepth, fmt.Sprintf("items may be nested at most %d levels deep", cbor.MaxNestingDepth)},
	{cbor.ErrOutOfMemory, "raise --max-length if the input is trusted"},
	{errTrailingData, "use --seq to read a CBOR sequence"},
	{cbor.ErrMalformed, "the input is truncated or not CBOR"},
}

// describe adds a hint for the kind of error to its message.
func describe(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.err) {
			return fmt.Sprintf("%v\n  hint: %s", err, h.hint)
		}
	}
	return err.Error()
}
