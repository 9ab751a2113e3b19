// Package querysql compiles filter configs and filter trees to
// parameterized SQLite statements, and owns the dedup optimizer that
// post-processes compiled queries.
//
// Two rules hold for every statement this package emits:
//   - Values are always bound through ? placeholders, never interpolated.
//     The only caller-influenced identifiers in query text are column
//     names, and those resolve through the schema registry allow-list.
//   - Output is deterministic: equal inputs compile to byte-identical
//     text and params (external collaborators cache results keyed on the
//     config fingerprint), and every full statement carries ORDER BY with
//     COLLATE BINARY so row order is stable across SQLite versions.
package querysql

import (
	"fmt"
	"strings"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/schema"
)

// Compiler compiles filter configs against a schema registry.
//
// A Compiler holds no state between calls: it is an explicitly
// constructed value, immutable after construction and safe for
// concurrent use.
type Compiler struct {
	reg *schema.Registry
}

// NewCompiler creates a Compiler over the given registry.
func NewCompiler(reg *schema.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Compile converts a flat config to a full SELECT statement.
//
// Fragments are emitted in a fixed order (text, range, date, boolean
// filters, each in array order) and joined with the config's combinator.
// Zero enabled predicates yields no WHERE clause at all. The statement
// selects a constant relevance marker for uniformity with ranking paths
// elsewhere, and always orders by id for deterministic rows.
//
// Compile assumes validated input. Unknown content types and fields are
// builder defects and fail fast with an error.
func (c *Compiler) Compile(cfg filter.Config) (CompiledQuery, error) {
	spec, err := c.tableSpec(cfg.Type)
	if err != nil {
		return CompiledQuery{}, err
	}
	frags, params, err := c.configFragments(cfg, spec)
	if err != nil {
		return CompiledQuery{}, err
	}
	return selectStatement(spec.Table, joinFragments(frags, cfg.Operator), params), nil
}

// CompileCount converts a flat config to its COUNT(*) variant: the same
// WHERE derivation under SELECT COUNT(*), with no ordering and no
// relevance marker.
func (c *Compiler) CompileCount(cfg filter.Config) (CompiledQuery, error) {
	spec, err := c.tableSpec(cfg.Type)
	if err != nil {
		return CompiledQuery{}, err
	}
	frags, params, err := c.configFragments(cfg, spec)
	if err != nil {
		return CompiledQuery{}, err
	}
	return countStatement(spec.Table, joinFragments(frags, cfg.Operator), params), nil
}

// tableSpec resolves a content type through the registry.
func (c *Compiler) tableSpec(ct filter.ContentType) (*schema.TypeSpec, error) {
	spec, ok := c.reg.Type(string(ct))
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", ct)
	}
	return spec, nil
}

// selectStatement assembles the full row-returning statement around an
// optional WHERE expression.
func selectStatement(table, where string, params []any) CompiledQuery {
	var b strings.Builder
	b.WriteString("SELECT *, 1 AS relevance FROM ")
	b.WriteString(table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY id ASC COLLATE BINARY")
	return CompiledQuery{Text: b.String(), Params: params}
}

// countStatement assembles the COUNT variant.
func countStatement(table, where string, params []any) CompiledQuery {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) AS match_count FROM ")
	b.WriteString(table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	return CompiledQuery{Text: b.String(), Params: params}
}

// joinFragments glues predicate fragments with a combinator. Zero
// fragments means no constraint and returns "".
func joinFragments(frags []string, op filter.Combinator) string {
	return strings.Join(frags, " "+string(op)+" ")
}

// configFragments walks the filter arrays of a flat config in the fixed
// deterministic order and emits one fragment plus its bound values per
// enabled filter. Fragment order and param order correspond exactly:
// the n-th placeholder across the joined fragments binds params[n].
func (c *Compiler) configFragments(cfg filter.Config, spec *schema.TypeSpec) ([]string, []any, error) {
	var frags []string
	var params []any

	for i, f := range cfg.TextFilters {
		if !f.Enabled() {
			continue
		}
		col, err := resolveColumn(spec, f.Field, schema.KindText)
		if err != nil {
			return nil, nil, fmt.Errorf("textFilters[%d]: %w", i, err)
		}
		frag, value, err := textFragment(col, f)
		if err != nil {
			return nil, nil, fmt.Errorf("textFilters[%d]: %w", i, err)
		}
		frags = append(frags, frag)
		params = append(params, value)
	}

	for i, f := range cfg.RangeFilters {
		if !f.Enabled() {
			continue
		}
		col, err := resolveColumn(spec, f.Field, schema.KindNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("rangeFilters[%d]: %w", i, err)
		}
		switch {
		case f.Min != nil && f.Max != nil:
			// Dual-bound fragments are parenthesized so OR joins at the
			// config level keep their meaning.
			frags = append(frags, "("+col+" >= ? AND "+col+" <= ?)")
			params = append(params, *f.Min, *f.Max)
		case f.Min != nil:
			frags = append(frags, col+" >= ?")
			params = append(params, *f.Min)
		default:
			frags = append(frags, col+" <= ?")
			params = append(params, *f.Max)
		}
	}

	for i, f := range cfg.DateFilters {
		if !f.Enabled() {
			continue
		}
		col, err := resolveColumn(spec, f.Field, schema.KindDate)
		if err != nil {
			return nil, nil, fmt.Errorf("dateFilters[%d]: %w", i, err)
		}
		switch {
		case f.Start != "" && f.End != "":
			frags = append(frags, "("+col+" >= ? AND "+col+" <= ?)")
			params = append(params, f.Start, f.End)
		case f.Start != "":
			frags = append(frags, col+" >= ?")
			params = append(params, f.Start)
		default:
			frags = append(frags, col+" <= ?")
			params = append(params, f.End)
		}
	}

	for i, f := range cfg.BooleanFilters {
		col, err := resolveColumn(spec, f.Field, schema.KindBool)
		if err != nil {
			return nil, nil, fmt.Errorf("booleanFilters[%d]: %w", i, err)
		}
		frags = append(frags, col+" = ?")
		params = append(params, f.Value)
	}

	return frags, params, nil
}

// resolveColumn maps a filter field to its storage column through the
// registry. The returned column is the registry's string, never the
// caller's: this is the only way an identifier enters query text.
func resolveColumn(spec *schema.TypeSpec, name string, want schema.Kind) (string, error) {
	field, ok := spec.Field(name)
	if !ok {
		return "", fmt.Errorf("field %q is not searchable on content type %q", name, spec.Name)
	}
	if field.Kind != want {
		return "", fmt.Errorf("field %q has kind %s, not %s", name, field.Kind, want)
	}
	return field.Column, nil
}

// textFragment emits the predicate for one text filter.
//
// Case-insensitive matches use LIKE, which folds ASCII case; the
// in-memory evaluator folds ASCII identically. Case-sensitive substring
// matches use GLOB (LIKE cannot be made case-sensitive per-predicate
// without flipping a connection-wide pragma); case-sensitive equality is
// plain = under the default BINARY collation. Values are escaped so LIKE
// and GLOB metacharacters in user input always match literally.
func textFragment(col string, f filter.TextFilter) (string, any, error) {
	v := f.TrimmedValue()

	if f.CaseSensitive {
		switch f.Match {
		case filter.MatchEquals:
			return col + " = ?", v, nil
		case filter.MatchContains:
			return col + " GLOB ?", "*" + escapeGlob(v) + "*", nil
		case filter.MatchStartsWith:
			return col + " GLOB ?", escapeGlob(v) + "*", nil
		case filter.MatchEndsWith:
			return col + " GLOB ?", "*" + escapeGlob(v), nil
		}
		return "", nil, fmt.Errorf("unknown match type %q", f.Match)
	}

	frag := col + ` LIKE ? ESCAPE '\'`
	switch f.Match {
	case filter.MatchEquals:
		return frag, escapeLike(v), nil
	case filter.MatchContains:
		return frag, "%" + escapeLike(v) + "%", nil
	case filter.MatchStartsWith:
		return frag, escapeLike(v) + "%", nil
	case filter.MatchEndsWith:
		return frag, "%" + escapeLike(v), nil
	}
	return "", nil, fmt.Errorf("unknown match type %q", f.Match)
}

// escapeLike escapes LIKE metacharacters so the value matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}

// escapeGlob neutralizes GLOB metacharacters with character classes.
// Escaping [ is sufficient: ] is only special while a class is open.
var globEscaper = strings.NewReplacer(`*`, `[*]`, `?`, `[?]`, `[`, `[[]`)

func escapeGlob(v string) string {
	return globEscaper.Replace(v)
}
