package filter

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical JSON encoding of a config.
//
// Equal configs always produce byte-identical output; fingerprints and
// share strings are built on this encoding. Differences from standard
// json.Marshal:
//  1. Object keys emitted in UTF-16 code unit order (all keys here are
//     ASCII, so that is plain byte order)
//  2. No HTML escaping (< > & are not escaped)
//  3. Strings are NFC normalized
//  4. Nil and empty filter slices both encode as [], absent bounds are
//     omitted, so representational accidents never change the bytes
//
// Numbers must be finite: NaN and infinite range bounds return an error.
func MarshalCanonical(c Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"booleanFilters":[`)
	for i, f := range c.BooleanFilters {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"field":`)
		writeCanonicalString(&buf, f.Field)
		buf.WriteString(`,"value":`)
		writeCanonicalBool(&buf, f.Value)
		buf.WriteByte('}')
	}
	buf.WriteString(`],"dateFilters":[`)
	for i, f := range c.DateFilters {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if f.End != "" {
			buf.WriteString(`"end":`)
			writeCanonicalString(&buf, f.End)
			buf.WriteByte(',')
		}
		buf.WriteString(`"field":`)
		writeCanonicalString(&buf, f.Field)
		if f.Start != "" {
			buf.WriteString(`,"start":`)
			writeCanonicalString(&buf, f.Start)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`],"operator":`)
	writeCanonicalString(&buf, string(c.Operator))

	buf.WriteString(`,"rangeFilters":[`)
	for i, f := range c.RangeFilters {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"field":`)
		writeCanonicalString(&buf, f.Field)
		if f.Max != nil {
			num, err := formatCanonicalNumber(*f.Max)
			if err != nil {
				return nil, fmt.Errorf("rangeFilters[%d].max: %w", i, err)
			}
			buf.WriteString(`,"max":`)
			buf.WriteString(num)
		}
		if f.Min != nil {
			num, err := formatCanonicalNumber(*f.Min)
			if err != nil {
				return nil, fmt.Errorf("rangeFilters[%d].min: %w", i, err)
			}
			buf.WriteString(`,"min":`)
			buf.WriteString(num)
		}
		buf.WriteByte('}')
	}

	buf.WriteString(`],"textFilters":[`)
	for i, f := range c.TextFilters {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"caseSensitive":`)
		writeCanonicalBool(&buf, f.CaseSensitive)
		buf.WriteString(`,"field":`)
		writeCanonicalString(&buf, f.Field)
		buf.WriteString(`,"matchType":`)
		writeCanonicalString(&buf, string(f.Match))
		buf.WriteString(`,"value":`)
		writeCanonicalString(&buf, f.Value)
		buf.WriteByte('}')
	}

	buf.WriteString(`],"type":`)
	writeCanonicalString(&buf, string(c.Type))
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeCanonicalString writes a JSON string with NFC normalization and no
// HTML escaping. Only the quote, the backslash, and control characters are
// escaped; everything else is emitted literally.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	normalized := norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range normalized {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\f':
			buf.WriteString(`\f`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeCanonicalBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
}

// formatCanonicalNumber formats a range bound deterministically via Go's
// shortest round-trip representation. Integral values carry no decimal
// point ("25", not "25.0"), so equal bounds always serialize identically.
func formatCanonicalNumber(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("non-finite numbers are forbidden in canonical JSON: %v", v)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}
