// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

/*
Package cbor implements a canonical encoder, a strict decoder, and a validator
for RFC 8949 Concise Binary Object Representation (CBOR).

Not supported:

  - Indefinite length arrays, maps, byte strings, or text strings
  - Unassigned (0..19) and reserved (24..31) simple values
  - Bignums, decimal fractions, or any other tag semantics besides the
    timestamp helpers
  - UTF-8 validation of strings
  - Reflection based mapping to Go structs (see package schema for an
    explicit alternative)

# Values

A decoded item is a [Value], which is exactly one of [Int], [ByteString],
[TextString], [Array], [Map], [Tag], [Float], or [Simple]. Integers cover the
whole CBOR range of -2**64 to (2**64)-1. Floats remember their encoded width
and bit pattern, so a half precision -0.0 is encoded back to 0xf9 0x80 0x00.

	v := cbor.Map{
		{Key: cbor.NewInt(1), Value: cbor.TextString("IETF")},
		{Key: cbor.TextString("flags"), Value: cbor.Array{cbor.True, cbor.Null}},
		{Key: cbor.NewInt(-1), Value: cbor.NewFloat16(float16.Fromfloat32(1.5))},
	}

# Encoding

[Marshal], [AppendValue], and [Encoder] always produce the canonical form:
every length, count, integer, tag number, and simple value uses the shortest
head, and map pairs are sorted by [Less]. Encoding the Value above gives

	a3                 # map(3)
	   20              # -1
	   f9 3e00         # 1.5
	   01              # 1
	   64 49455446     # "IETF"
	   65 666c616773   # "flags"
	   82 f5 f6        # [true, null]

The [Builder] writes the same bytes without building a Value tree first.
Pairs pushed into a map frame are written in push order, so callers which
need a canonical map from a Builder must push keys sorted by Less.

	b := cbor.NewBuilder()
	_ = b.Enter(cbor.ArrayContainer)
	_ = b.PushInt(1)
	_ = b.PushTag(cbor.TagEpochTime)
	_ = b.PushUint(1700000000)
	_ = b.Leave()
	data, err := b.Finish() // 82 01 c1 1a 6553f100

# Decoding

[Decode] accepts exactly one item and rejects trailing bytes. [DecodeFirst]
and [SplitFirst] walk CBOR sequences. A streaming [Decoder] reads one item at a
time from an [io.Reader] and limits declared lengths with MaxLength before
allocating.

Decoding does not require canonical input: non-minimal heads, unsorted maps,
and duplicate keys are all accepted and kept as they were. Errors wrap one of
the sentinel errors of this package in a [*SyntaxError] which records the
offset of the offending head.

	_, err := cbor.Decode([]byte{0x9f, 0x01, 0xff})
	errors.Is(err, cbor.ErrIndefiniteLength) // true

# Validation and Views

[Wellformed] checks an encoding without allocating and accepts exactly the
inputs which Decode accepts. A [View] is a zero-copy cursor over validated
bytes: scalars are read from the buffer on demand and nested items are Views
of the same buffer.

	view, err := cbor.NewView(data)
	for key, val := range view.Pairs() {
		...
	}

Arrays, maps, and tags may be nested at most [MaxNestingDepth] levels.
*/
package cbor
