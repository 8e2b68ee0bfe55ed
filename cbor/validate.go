// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

// Wellformed checks that data is exactly one well-formed, definite length CBOR
// item without allocating. It accepts exactly the inputs that Decode accepts.
func Wellformed(data []byte) error {
	_, err := validate(data, 0, true)
	return err
}

// Valid reports whether data is exactly one well-formed CBOR item.
func Valid(data []byte) bool { return Wellformed(data) == nil }

// ValidPrefix checks that data begins with a well-formed CBOR item and returns
// its length. Any bytes after the first item are ignored.
func ValidPrefix(data []byte) (int, error) { return validate(data, 0, false) }

// validate checks the item starting at data[off]. If exact is set, the item
// must end at the end of data.
func validate(data []byte, off int, exact bool) (int, error) {
	next, err := skip(data, off, 0)
	if err != nil {
		return off, err
	}
	if exact && next != len(data) {
		return off, syntaxErr(next, ErrMalformed)
	}
	return next, nil
}

// skip returns the offset just past the item starting at data[off]. It is
// shared by the validator and the iterators of View.
func skip(data []byte, off, depth int) (int, error) {
	if depth > MaxNestingDepth {
		return off, syntaxErr(off, ErrNestingDepth)
	}
	h, next, err := readHead(data, off)
	if err != nil {
		return off, err
	}

	switch h.major {
	case unsignedIntMajorType, negativeIntMajorType:
		return next, nil

	case byteStringMajorType, textStringMajorType:
		if h.arg > uint64(len(data)-next) {
			return off, syntaxErr(off, ErrMalformed)
		}
		return next + int(h.arg), nil

	case arrayMajorType, mapMajorType:
		// Every item is at least one byte, so a pair is at least two
		n, limit := h.arg, uint64(len(data)-next)
		if h.major == mapMajorType {
			n, limit = 2*h.arg, limit/2
		}
		if h.arg > limit {
			return off, syntaxErr(off, ErrMalformed)
		}
		for range n {
			if next, err = skip(data, next, depth+1); err != nil {
				return off, err
			}
		}
		return next, nil

	case tagMajorType:
		if next, err = skip(data, next, depth+1); err != nil {
			return off, err
		}
		return next, nil

	default:
		if h.ai >= halfFloat {
			return next, nil
		}
		if err := checkSimple(h); err != nil {
			return off, syntaxErr(off, err)
		}
		return next, nil
	}
}
