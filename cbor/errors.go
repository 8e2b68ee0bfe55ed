// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"errors"
	"fmt"
)

// Decoding and validation errors. These are the kinds of errors returned by
// Decode, Wellformed, NewView, and the streaming Decoder. Use errors.Is to
// check for a kind, because the returned error is usually a *SyntaxError
// wrapping one of these.
var (
	// ErrReservedAdditionalInformation means the additional information of a
	// head was one of the reserved values 28, 29, or 30.
	ErrReservedAdditionalInformation = errors.New("cbor: reserved additional information")

	// ErrMalformed means the input was truncated, had trailing data, or was
	// otherwise structurally invalid.
	ErrMalformed = errors.New("cbor: malformed")

	// ErrIndefiniteLength means an indefinite length item or the break stop
	// code was found. Only definite length items are supported.
	ErrIndefiniteLength = errors.New("cbor: indefinite length items are not supported")

	// ErrUnassigned means a simple value has no assigned meaning.
	ErrUnassigned = errors.New("cbor: unassigned simple value")

	// ErrReservedSimpleValue means a simple value below 32 used the two byte
	// encoding.
	ErrReservedSimpleValue = errors.New("cbor: reserved simple value")

	// ErrOutOfMemory means a declared length exceeded the configured
	// allocation limit.
	ErrOutOfMemory = errors.New("cbor: length exceeds allocation limit")

	// ErrNestingDepth means arrays, maps, and tags were nested deeper than
	// MaxNestingDepth.
	ErrNestingDepth = errors.New("cbor: exceeded max nesting depth")
)

// Builder errors.
var (
	// ErrEmptyStack is returned when leaving the root frame.
	ErrEmptyStack = errors.New("cbor: builder stack is empty")

	// ErrInvalidContainerType is returned when entering a Root frame.
	ErrInvalidContainerType = errors.New("cbor: invalid container type")

	// ErrInvalidPairCount is returned when a map frame is closed holding half
	// of a key-value pair.
	ErrInvalidPairCount = errors.New("cbor: map has an odd number of items")

	// ErrMalformedCbor is returned when a fragment given to PushCbor is not a
	// single well-formed item.
	ErrMalformedCbor = errors.New("cbor: malformed fragment")

	// ErrDanglingTag is returned when a frame is closed after a tag head with
	// no tag content.
	ErrDanglingTag = errors.New("cbor: tag has no content")
)

// SyntaxError describes where in the input a decoding or validation error
// occurred.
type SyntaxError struct {
	Offset int   // byte offset of the head of the offending item
	Err    error // one of the sentinel errors of this package
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func syntaxErr(off int, err error) error { return &SyntaxError{Offset: off, Err: err} }
