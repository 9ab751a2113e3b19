package filter

import "strings"

// ContentType identifies one of the four browsable record domains.
type ContentType string

const (
	TypeAlumni      ContentType = "alumni"
	TypePublication ContentType = "publication"
	TypePhoto       ContentType = "photo"
	TypeFaculty     ContentType = "faculty"
)

// Combinator joins the enabled predicates of a combination.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// ValidCombinator reports whether c is one of the two combinators.
func ValidCombinator(c Combinator) bool {
	return c == And || c == Or
}

// MatchType selects the comparison shape of a text predicate.
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchEquals     MatchType = "equals"
	MatchStartsWith MatchType = "startsWith"
	MatchEndsWith   MatchType = "endsWith"
)

// ValidMatchType reports whether m is one of the four match types.
func ValidMatchType(m MatchType) bool {
	switch m {
	case MatchContains, MatchEquals, MatchStartsWith, MatchEndsWith:
		return true
	}
	return false
}

// TextFilter tests one text field against a value.
type TextFilter struct {
	Field         string    `json:"field"`
	Value         string    `json:"value"`
	Match         MatchType `json:"matchType"`
	CaseSensitive bool      `json:"caseSensitive"`
}

// Enabled reports whether the filter contributes a predicate. A value that
// trims to empty is dropped silently rather than rejected: live-typing
// builders emit transient empty values on every keystroke.
func (f TextFilter) Enabled() bool {
	return strings.TrimSpace(f.Value) != ""
}

// TrimmedValue returns the comparison value with surrounding space removed.
// Evaluation and compilation both operate on the trimmed value.
func (f TextFilter) TrimmedValue() string {
	return strings.TrimSpace(f.Value)
}

// RangeFilter tests one numeric field against an inclusive range.
// A nil bound leaves that side open.
type RangeFilter struct {
	Field string   `json:"field"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// Enabled reports whether at least one bound is present.
func (f RangeFilter) Enabled() bool {
	return f.Min != nil || f.Max != nil
}

// DateFilter tests one date field against an inclusive range of ISO 8601
// dates (2006-01-02). An empty bound leaves that side open.
type DateFilter struct {
	Field string `json:"field"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Enabled reports whether at least one bound is present.
func (f DateFilter) Enabled() bool {
	return f.Start != "" || f.End != ""
}

// BooleanFilter tests one boolean field for exact equality.
type BooleanFilter struct {
	Field string `json:"field"`
	Value bool   `json:"value"`
}

// Config is a flat combination of predicates over one content type: every
// enabled predicate across all four filter slices is joined with the single
// combinator. A config with zero enabled predicates vacuously matches
// everything.
//
// Config is plain, acyclic, function-free data. It round-trips through JSON
// without loss, which is the contract the sharing collaborator depends on.
type Config struct {
	Type           ContentType     `json:"type"`
	Operator       Combinator      `json:"operator"`
	TextFilters    []TextFilter    `json:"textFilters,omitempty"`
	RangeFilters   []RangeFilter   `json:"rangeFilters,omitempty"`
	DateFilters    []DateFilter    `json:"dateFilters,omitempty"`
	BooleanFilters []BooleanFilter `json:"booleanFilters,omitempty"`
}

// EnabledCount returns the number of predicates the config contributes.
func (c Config) EnabledCount() int {
	n := 0
	for _, f := range c.TextFilters {
		if f.Enabled() {
			n++
		}
	}
	for _, f := range c.RangeFilters {
		if f.Enabled() {
			n++
		}
	}
	for _, f := range c.DateFilters {
		if f.Enabled() {
			n++
		}
	}
	n += len(c.BooleanFilters)
	return n
}

// Float returns a pointer to v, for building range bounds inline.
func Float(v float64) *float64 {
	return &v
}
