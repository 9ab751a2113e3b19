package querysql

import (
	"fmt"
	"strings"
)

// Optimize removes duplicate predicates from a compiled query: identical
// fragment text bound to identical values, repeated under the same
// combinator, collapses to its first occurrence (A AND A == A,
// A OR A == A). The corresponding params are dropped with it, so the
// placeholder/param correspondence survives untouched. No other rewriting
// happens: no reordering, no cross-predicate algebra.
//
// Optimize is pure and idempotent, and it never errors: a query it cannot
// recognize comes back unchanged. The parse is well-defined because bound
// values never appear in query text; the WHERE clause contains only
// registry columns, operators, placeholders, and parens.
func Optimize(q CompiledQuery) CompiledQuery {
	whereStart := strings.Index(q.Text, " WHERE ")
	if whereStart < 0 {
		return q
	}
	exprStart := whereStart + len(" WHERE ")

	exprEnd := len(q.Text)
	if i := strings.Index(q.Text[exprStart:], " ORDER BY "); i >= 0 {
		exprEnd = exprStart + i
	}
	expr := q.Text[exprStart:exprEnd]

	// All placeholders live in the WHERE clause; a mismatch means the
	// query did not come from this compiler, so leave it alone.
	if strings.Count(expr, "?") != len(q.Params) {
		return q
	}

	dedupedExpr, dedupedParams, ok := dedupeExpr(expr, q.Params)
	if !ok {
		return q
	}

	return CompiledQuery{
		Text:   q.Text[:exprStart] + dedupedExpr + q.Text[exprEnd:],
		Params: dedupedParams,
	}
}

// dedupeExpr collapses duplicate parts of one boolean expression,
// recursing into parenthesized subexpressions. Returns ok=false when the
// expression does not parse as a single-combinator join.
func dedupeExpr(expr string, params []any) (string, []any, bool) {
	parts, op, ok := splitTopLevel(expr)
	if !ok {
		return "", nil, false
	}

	// Slice the param list per part by placeholder count, preserving
	// left-to-right order.
	type piece struct {
		text   string
		params []any
	}
	pieces := make([]piece, 0, len(parts))
	offset := 0
	for _, part := range parts {
		n := strings.Count(part, "?")
		if offset+n > len(params) {
			return "", nil, false
		}
		pieces = append(pieces, piece{text: part, params: params[offset : offset+n]})
		offset += n
	}
	if offset != len(params) {
		return "", nil, false
	}

	// Dedupe inside parenthesized pieces first, so nested duplicates
	// collapse before the outer comparison runs.
	for i, p := range pieces {
		inner, wrapped := stripParens(p.text)
		if !wrapped {
			continue
		}
		dedupedInner, dedupedParams, ok := dedupeExpr(inner, p.params)
		if !ok {
			continue
		}
		pieces[i] = piece{text: "(" + dedupedInner + ")", params: dedupedParams}
	}

	// Collapse repeats: identical text with identical bound values keeps
	// only its first occurrence.
	seen := make(map[string]bool)
	var outParts []string
	var outParams []any
	for _, p := range pieces {
		key := p.text + "\x00" + paramKey(p.params)
		if seen[key] {
			continue
		}
		seen[key] = true
		outParts = append(outParts, p.text)
		outParams = append(outParams, p.params...)
	}

	return strings.Join(outParts, " "+op+" "), outParams, true
}

// splitTopLevel splits a boolean expression on its single top-level
// combinator, paren-depth aware. A part-free expression returns itself
// with op "AND" (the join never happens). Mixed AND/OR at one level never
// comes out of the compiler and returns ok=false.
func splitTopLevel(expr string) ([]string, string, bool) {
	var parts []string
	depth := 0
	start := 0
	op := ""

	i := 0
	for i < len(expr) {
		switch expr[i] {
		case '(':
			depth++
			i++
		case ')':
			depth--
			if depth < 0 {
				return nil, "", false
			}
			i++
		default:
			if depth == 0 {
				var sep string
				switch {
				case strings.HasPrefix(expr[i:], " AND "):
					sep = "AND"
				case strings.HasPrefix(expr[i:], " OR "):
					sep = "OR"
				}
				if sep != "" {
					if op == "" {
						op = sep
					} else if op != sep {
						return nil, "", false
					}
					parts = append(parts, expr[start:i])
					i += len(sep) + 2
					start = i
					continue
				}
			}
			i++
		}
	}
	if depth != 0 {
		return nil, "", false
	}
	parts = append(parts, expr[start:])
	if op == "" {
		op = "AND"
	}
	return parts, op, true
}

// stripParens returns the inside of a fully parenthesized expression. It
// only strips when the opening paren matches the final closing paren, so
// "(a) AND (b)" is left intact.
func stripParens(s string) (string, bool) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s, false
			}
		}
	}
	return s[1 : len(s)-1], true
}

// paramKey renders a param slice to a comparison key. The dynamic type
// is part of the key: 1925 as a float64 and as an int64 render the same
// under %#v but bind differently, so they must not collide.
func paramKey(params []any) string {
	var b strings.Builder
	for _, p := range params {
		fmt.Fprintf(&b, "%T=%#v\x00", p, p)
	}
	return b.String()
}
