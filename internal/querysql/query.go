package querysql

import "strings"

// CompiledQuery is parameterized query text plus its ordered bind values.
//
// Invariant: the n-th ? placeholder in Text, read left to right, binds
// Params[n]. Every transformation of a CompiledQuery (optimization
// included) preserves this correspondence. Bound values never appear in
// Text, so counting placeholders in the text is exact.
type CompiledQuery struct {
	Text   string `json:"text"`
	Params []any  `json:"params"`
}

// PlaceholderCount returns the number of ? placeholders in Text.
func (q CompiledQuery) PlaceholderCount() int {
	return strings.Count(q.Text, "?")
}
