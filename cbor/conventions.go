// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Tag numbers registered by RFC 8949 which have helpers in this package.
const (
	TagDateTime    uint64 = 0  // RFC 3339 text string
	TagEpochTime   uint64 = 1  // seconds since the epoch
	TagEncodedCBOR uint64 = 24 // byte string holding an encoded item
)

// Bstr encodes v and returns the encoding as a byte string.
//
//	CDDL: bstr .cbor T
//
// This is a common convention in specifications like COSE and CTAP and acts
// as a sort of type erasure: signed payloads and authenticator data are
// carried as opaque bytes and decoded by the consumer.
func Bstr(v Value) (ByteString, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	return ByteString(data), nil
}

// Unbstr decodes the item wrapped by a byte string created with Bstr.
func Unbstr(v Value) (Value, error) {
	bs, ok := v.(ByteString)
	if !ok {
		return nil, fmt.Errorf("expected a byte string, got %s", typeOf(v))
	}
	return Decode(bs)
}

// NewEmbedded wraps the encoding of v in a tag 24 (encoded CBOR data item).
func NewEmbedded(v Value) (Tag, error) {
	bs, err := Bstr(v)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Number: TagEncodedCBOR, Content: bs}, nil
}

// NewEpochTime returns a tag 1 timestamp of whole seconds.
func NewEpochTime(t time.Time) Tag {
	return Tag{Number: TagEpochTime, Content: NewInt(t.Unix())}
}

// NewDateTime returns a tag 0 RFC 3339 timestamp in UTC.
func NewDateTime(t time.Time) Tag {
	return Tag{Number: TagDateTime, Content: TextString(t.UTC().Format(time.RFC3339Nano))}
}

// Time converts a tag 0 or tag 1 timestamp to a time.
//
//	UTCStr = #6.0(tstr)
//	UTCInt = #6.1(int / float)
func (t Tag) Time() (time.Time, error) {
	switch t.Number {
	// Tag 0: Parse string as RFC3339
	case TagDateTime:
		s, ok := t.Content.(TextString)
		if !ok {
			return time.Time{}, fmt.Errorf("tag 0 must contain a text string, got %s", typeOf(t.Content))
		}
		ts, err := time.Parse(time.RFC3339, string(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp string, must be RFC3339 format: %w", err)
		}
		return ts, nil

	// Tag 1: Parse number as seconds
	case TagEpochTime:
		switch c := t.Content.(type) {
		case Int:
			sec, ok := c.Int64()
			if !ok {
				return time.Time{}, errors.New("epoch time overflows")
			}
			return time.Unix(sec, 0), nil
		case Float:
			f := c.Float64()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return time.Time{}, errors.New("epoch time is not finite")
			}
			if f >= math.MaxInt64 || f < math.MinInt64 {
				return time.Time{}, errors.New("epoch time overflows")
			}
			sec, frac := math.Modf(f)
			return time.Unix(int64(sec), int64(frac*1e9)), nil
		}
		return time.Time{}, fmt.Errorf("tag 1 must contain a number, got %s", typeOf(t.Content))
	}

	return time.Time{}, fmt.Errorf("unknown tag number %d", t.Number)
}

func typeOf(v Value) Type {
	if v == nil {
		return TypeInvalid
	}
	return v.Type()
}
