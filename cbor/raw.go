// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

// RawBytes is one encoded CBOR item, such as returned by Decoder.DecodeRaw.
type RawBytes []byte

// View returns a View of the item after checking that it is well-formed.
func (b RawBytes) View() (View, error) { return NewView(b) }

// SplitFirst splits the first item of a CBOR sequence from the items after
// it. Neither slice is copied.
func SplitFirst(data []byte) (item, rest []byte, err error) {
	n, err := ValidPrefix(data)
	if err != nil {
		return nil, data, err
	}
	return data[:n:n], data[n:], nil
}

// ArrayShift returns the first element of a CBOR array type (not text or byte
// strings) as unparsed CBOR and the rest as a CBOR-encoded array of one fewer
// elements. Trailing data will be left intact.
//
// If the CBOR data is invalid or not an array, first will be zero length and
// remaining will be equal to the input data.
//
// This function only operates on array major types and not text strings or
// byte strings.
func ArrayShift(data []byte) (first, remaining []byte) {
	if len(data) == 0 {
		panic("data cannot be empty")
	}

	h, next, err := readHead(data, 0)
	if err != nil || h.major != arrayMajorType || h.arg == 0 {
		return nil, data
	}

	// Find the end of the first item from the array contents
	end, err := skip(data, next, 1)
	if err != nil {
		return nil, data
	}

	// Return the first item's CBOR encoding and an array of the remaining data
	// (with length decremented by one)
	return data[next:end], append(appendHead(nil, arrayMajorType, h.arg-1), data[end:]...)
}
