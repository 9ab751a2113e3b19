package process

import "strings"

// Record is one stored row as a uniform string-keyed value map, so a
// single evaluator serves all four content types. Values are whatever the
// store's row scanner produces: string, []byte, int64, float64, bool, or
// nil. Test fixtures may also carry plain int.
type Record map[string]any

// ID returns the record's id column as a string, or "" if absent.
func (r Record) ID() string {
	s, _ := asText(r["id"])
	return s
}

// asText coerces a record value to a string for text and date predicates.
// SQLite drivers scan TEXT columns as either string or []byte depending on
// version; both are accepted.
func asText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return "", false
	}
}

// asNumber coerces a record value to a float64 for range predicates.
func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}

// asBool coerces a record value to a bool. Boolean columns are stored as
// INTEGER 0/1 and scan back as int64; fixtures carry real bools.
func asBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case int64:
		return val != 0, true
	case int:
		return val != 0, true
	default:
		return false, false
	}
}

// foldASCII lowercases the ASCII letters of s and leaves everything else
// alone. Case-insensitive matching folds ASCII only, because the query
// side (LIKE) folds ASCII only: folding more here would silently diverge
// from the compiled path. Non-ASCII text compares case-sensitively on
// both sides.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
