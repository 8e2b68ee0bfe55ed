// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package cdn implements CBOR Diagnostic Notation.
//
// CBOR is a binary interchange format. To facilitate documentation and
// debugging, RFC 8949 section 8 defines a simple human-readable diagnostic
// notation. All actual interchange always happens in the binary format.
//
// Only base16 notation is supported for binary values.
//
//	h'12345678' // supported
//	b32'CI2FM6A' or b64'EjRWeA' // not supported
//
// Floats are always written with an encoding indicator for their width (_1
// for half, _2 for single, _3 for double precision) so that formatting and
// parsing preserve the width. A float without an indicator is parsed to the
// narrowest width which represents it exactly. NaN payloads are not
// preserved, and text strings which are not valid UTF-8 are written with
// replacement characters.
//
// Example:
//
//	s, _ := cdn.FromCBOR(cborBytes)
//
//	cborBytes, _ := cdn.ToCBOR(s)
package cdn

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/x448/float16"

	"github.com/fido-device-onboard/go-cbor/cbor"
)

// Sentinel errors
var (
	ErrInvalidInput        = errors.New("cdn: unexpected input")
	ErrInvalidEncodingType = errors.New("cdn: invalid encoding type")
)

// FromCBOR re-encodes CBOR bytes as a diagnostic string.
func FromCBOR(c []byte) (string, error) {
	v, err := cbor.Decode(c)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return Format(v)
}

// ToCBOR marshals a diagnostic string into canonical CBOR.
func ToCBOR(s string) ([]byte, error) {
	v, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(v)
}

// Format writes a value in diagnostic notation. Map pairs are written in the
// order they are stored.
func Format(v cbor.Value) (string, error) {
	var b bytes.Buffer
	if err := encodeValue(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeValue(b *bytes.Buffer, v cbor.Value) error { //nolint:gocyclo
	switch v := v.(type) {
	default:
		return ErrInvalidEncodingType

	case cbor.Int:
		_, _ = b.WriteString(v.String())

	case cbor.ByteString:
		_, _ = b.WriteString("h'")
		_, _ = hex.NewEncoder(b).Write(v)
		_, _ = b.WriteString("'")

	case cbor.TextString:
		enc := json.NewEncoder(b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(string(v)); err != nil {
			return err
		}
		// Remove newline added by json.Encoder
		b.Truncate(b.Len() - 1)

	case cbor.Array:
		_, _ = b.WriteString("[")
		for index, element := range v {
			if index > 0 {
				_, _ = b.WriteString(", ")
			}
			if err := encodeValue(b, element); err != nil {
				return err
			}
		}
		_, _ = b.WriteString("]")

	case cbor.Map:
		_, _ = b.WriteString("{")
		for index, pair := range v {
			if index > 0 {
				_, _ = b.WriteString(", ")
			}
			if err := encodeValue(b, pair.Key); err != nil {
				return err
			}
			_, _ = b.WriteString(": ")
			if err := encodeValue(b, pair.Value); err != nil {
				return err
			}
		}
		_, _ = b.WriteString("}")

	case cbor.Tag:
		_, _ = b.WriteString(strconv.FormatUint(v.Number, 10))
		_, _ = b.WriteString("(")
		if err := encodeValue(b, v.Content); err != nil {
			return err
		}
		_, _ = b.WriteString(")")

	case cbor.Float:
		_, _ = b.WriteString(formatFloat(v))

	case cbor.Simple:
		_, _ = b.WriteString(v.String())
	}

	return nil
}

func formatFloat(f cbor.Float) string {
	var s string
	x := f.Float64()
	switch {
	case math.IsNaN(x):
		s = "NaN"
	case math.IsInf(x, 1):
		s = "Infinity"
	case math.IsInf(x, -1):
		s = "-Infinity"
	default:
		bitSize := 64
		if f.Width != cbor.Double {
			bitSize = 32
		}
		s = strconv.FormatFloat(x, 'g', -1, bitSize)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
	}

	switch f.Width {
	case cbor.Half:
		return s + "_1"
	case cbor.Single:
		return s + "_2"
	default:
		return s + "_3"
	}
}

// Parse parses one item in diagnostic notation. Only whitespace may follow
// it.
func Parse(s string) (cbor.Value, error) {
	p := &parser{s: s}
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.discardSpaces()
	if p.pos != len(p.s) {
		return nil, p.errorf("trailing data")
	}
	return v, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, a ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrInvalidInput, p.pos, fmt.Sprintf(format, a...))
}

func (p *parser) discardSpaces() {
	for p.pos < len(p.s) && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) consume(prefix string) bool {
	if strings.HasPrefix(p.s[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *parser) decodeDelim(d byte) error {
	p.discardSpaces()
	if p.peek() != d {
		return p.errorf("expected %q", d)
	}
	p.pos++
	return nil
}

func (p *parser) value(depth int) (cbor.Value, error) { //nolint:gocyclo
	if depth > cbor.MaxNestingDepth {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, cbor.ErrNestingDepth)
	}
	p.discardSpaces()

	switch b := p.peek(); {
	case b == '[':
		return p.decodeArray(depth)
	case b == '{':
		return p.decodeMap(depth)
	case b == '"':
		return p.decodeString()
	case b == 'h':
		return p.decodeHex()
	case b == '-' || b == 'N' || b == 'I' || isDigit(b):
		return p.decodeNumber(depth)
	case p.consume("true"):
		return cbor.True, nil
	case p.consume("false"):
		return cbor.False, nil
	case p.consume("null"):
		return cbor.Null, nil
	case p.consume("undefined"):
		return cbor.Undefined, nil
	case p.consume("simple("):
		return p.decodeSimple()
	}

	return nil, p.errorf("unexpected character")
}

func (p *parser) decodeArray(depth int) (cbor.Value, error) {
	p.pos++ // [
	a := cbor.Array{}
	p.discardSpaces()
	if p.consume("]") {
		return a, nil
	}
	for {
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		a = append(a, v)

		p.discardSpaces()
		switch {
		case p.consume(","):
		case p.consume("]"):
			return a, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *parser) decodeMap(depth int) (cbor.Value, error) {
	p.pos++ // {
	m := cbor.Map{}
	p.discardSpaces()
	if p.consume("}") {
		return m, nil
	}
	for {
		k, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.decodeDelim(':'); err != nil {
			return nil, err
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		m = append(m, cbor.Pair{Key: k, Value: v})

		p.discardSpaces()
		switch {
		case p.consume(","):
		case p.consume("}"):
			return m, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *parser) decodeString() (cbor.Value, error) {
	start := p.pos
	p.pos++ // "
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			var s string
			if err := json.Unmarshal([]byte(p.s[start:p.pos]), &s); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			return cbor.TextString(s), nil
		}
		p.pos++
	}
	return nil, p.errorf("unterminated string")
}

func (p *parser) decodeHex() (cbor.Value, error) {
	if !p.consume("h'") {
		return nil, p.errorf("expected h'")
	}
	end := strings.IndexByte(p.s[p.pos:], '\'')
	if end < 0 {
		return nil, p.errorf("unterminated byte string")
	}
	digits := strings.Join(strings.Fields(p.s[p.pos:p.pos+end]), "")
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	p.pos += end + 1
	return cbor.ByteString(b), nil
}

func (p *parser) decodeSimple() (cbor.Value, error) {
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	n, err := strconv.ParseUint(p.s[start:p.pos], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !p.consume(")") {
		return nil, p.errorf("expected ')'")
	}
	return cbor.Simple(n), nil
}

func (p *parser) decodeNumber(depth int) (cbor.Value, error) {
	start := p.pos
	isFloat := false
	switch {
	case p.consume("NaN"), p.consume("Infinity"), p.consume("-Infinity"):
		isFloat = true
	default:
		p.consume("-")
		for b := p.peek(); isDigit(b) || b == '.' || b == 'e' || b == 'E' ||
			((b == '+' || b == '-') && (p.s[p.pos-1] == 'e' || p.s[p.pos-1] == 'E')); b = p.peek() {
			isFloat = isFloat || !isDigit(b)
			p.pos++
		}
	}
	text := p.s[start:p.pos]

	var width cbor.FloatWidth
	switch {
	case p.consume("_1"):
		width = cbor.Half
	case p.consume("_2"):
		width = cbor.Single
	case p.consume("_3"):
		width = cbor.Double
	}

	if !isFloat && width == 0 {
		return p.decodeInt(text, depth)
	}
	switch width {
	case cbor.Half:
		h, err := parseHalf(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return cbor.NewFloat16(h), nil
	case cbor.Single:
		f, err := parseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return cbor.NewFloat32(float32(f)), nil
	}
	f, err := parseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if width == cbor.Double {
		return cbor.NewFloat64(f), nil
	}
	return cbor.NewFloatShortest(f), nil
}

func parseFloat(s string, bitSize int) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, bitSize)
}

// parseHalf rounds a literal to the nearest half precision value, ties to
// even, in a single step. Going through float32 could round twice.
func parseHalf(s string) (float16.Float16, error) {
	f, err := parseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if a := math.Abs(f); math.IsNaN(f) || a > 65536 || a < 0x1p-26 {
		return float16.Fromfloat32(float32(f)), nil
	}

	x, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	var sign uint16
	if x.Sign() < 0 {
		sign = 0x8000
		x.Neg(x)
	}

	// Subnormals share the binade of the smallest normal exponent
	exp := -14
	for exp < 15 && x.Cmp(pow2(exp+1)) >= 0 {
		exp++
	}
	n := roundEven(new(big.Rat).Quo(x, pow2(exp-10)))
	if n == 2048 {
		n, exp = 1024, exp+1
	}

	var bits uint16
	switch {
	case exp > 15:
		bits = 0x7c00
	case n < 1024:
		bits = uint16(n)
	default:
		bits = uint16(exp+15)<<10 | uint16(n-1024)
	}
	return float16.Frombits(sign | bits), nil
}

func pow2(k int) *big.Rat {
	if k >= 0 {
		return new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), uint(k)))
	}
	return new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), uint(-k)))
}

// roundEven rounds a non-negative rational to an integer, ties to even.
func roundEven(r *big.Rat) int64 {
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	switch m.Lsh(m, 1).Cmp(r.Denom()) {
	case 1:
		q.Add(q, big.NewInt(1))
	case 0:
		if q.Bit(0) == 1 {
			q.Add(q, big.NewInt(1))
		}
	}
	return q.Int64()
}

// decodeInt parses an integer of the full CBOR range, which may be followed
// by a parenthesized tag content if it is not negative.
func (p *parser) decodeInt(text string, depth int) (cbor.Value, error) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, p.errorf("invalid number %q", text)
	}
	i, err := cbor.NewBigInt(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// Check if num is the start of a tag by looking for an open paren
	if p.peek() != '(' {
		return i, nil
	}
	num, ok := i.Uint64()
	if !ok {
		return nil, p.errorf("negative tag number")
	}
	p.pos++ // (
	content, err := p.value(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := p.decodeDelim(')'); err != nil {
		return nil, err
	}
	return cbor.Tag{Number: num, Content: content}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
