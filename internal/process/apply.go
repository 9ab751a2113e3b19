package process

import (
	"strings"

	"github.com/tannerhall/sift/internal/filter"
)

// Apply evaluates a flat config against in-memory records and returns the
// matching subsequence in input order. The input slice is never mutated.
//
// Matching rules mirror the compiled query exactly:
//   - text: contains/equals/startsWith/endsWith on the trimmed value,
//     ASCII case folding unless CaseSensitive
//   - range/date: inclusive on both ends, open bounds unbounded
//   - boolean: strict equality
//
// All enabled predicates, regardless of category, combine with the
// config's single combinator. Zero enabled predicates matches every
// record. A predicate whose field is absent on a record, or holds an
// uncoercible value, is false: sparse and heterogeneous records are
// expected and never raise errors.
func Apply(records []Record, cfg filter.Config) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if matchConfig(cfg, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// ApplyTree evaluates a filter tree against in-memory records, with the
// same record-level semantics CompileTree gives the query path: Branch
// combines constrained children with its combinator, Group with an
// implicit AND, and a subtree that contributes no constraint is skipped
// rather than treated as true or false. A wholly unconstrained tree
// matches every record.
func ApplyTree(records []Record, root filter.Node) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		ok, constrained := matchNode(root, rec)
		if !constrained || ok {
			out = append(out, rec)
		}
	}
	return out
}

// matchConfig evaluates every enabled predicate of a flat config against
// one record and combines the outcomes with the config's combinator.
func matchConfig(cfg filter.Config, rec Record) bool {
	all := true
	any := false
	enabled := 0
	consider := func(ok bool) {
		enabled++
		all = all && ok
		any = any || ok
	}

	for _, f := range cfg.TextFilters {
		if f.Enabled() {
			consider(matchText(f, rec))
		}
	}
	for _, f := range cfg.RangeFilters {
		if f.Enabled() {
			consider(matchRange(f, rec))
		}
	}
	for _, f := range cfg.DateFilters {
		if f.Enabled() {
			consider(matchDate(f, rec))
		}
	}
	for _, f := range cfg.BooleanFilters {
		consider(matchBool(f, rec))
	}

	if enabled == 0 {
		return true
	}
	if cfg.Operator == filter.Or {
		return any
	}
	return all
}

// matchNode evaluates one tree node against one record. The second return
// reports whether the subtree constrained the record at all; callers skip
// unconstrained subtrees, matching the compiler's skip-empty-fragment
// rule, so the two paths agree on trees with vacuous leaves.
func matchNode(n filter.Node, rec Record) (ok bool, constrained bool) {
	switch node := n.(type) {
	case *filter.Leaf:
		if node.Config.EnabledCount() == 0 {
			return true, false
		}
		return matchConfig(node.Config, rec), true
	case *filter.Branch:
		return matchChildren(node.Children, node.Op, rec)
	case *filter.Group:
		return matchChildren(node.Children, filter.And, rec)
	default:
		// Unreachable: Node is sealed.
		return false, false
	}
}

func matchChildren(children []filter.Node, op filter.Combinator, rec Record) (bool, bool) {
	all := true
	any := false
	survivors := 0
	for _, child := range children {
		if child == nil {
			continue
		}
		ok, constrained := matchNode(child, rec)
		if !constrained {
			continue
		}
		survivors++
		all = all && ok
		any = any || ok
	}
	if survivors == 0 {
		return true, false
	}
	if op == filter.Or {
		return any, true
	}
	return all, true
}

func matchText(f filter.TextFilter, rec Record) bool {
	have, ok := asText(rec[f.Field])
	if !ok {
		return false
	}
	want := f.TrimmedValue()
	if !f.CaseSensitive {
		have = foldASCII(have)
		want = foldASCII(want)
	}
	switch f.Match {
	case filter.MatchContains:
		return strings.Contains(have, want)
	case filter.MatchEquals:
		return have == want
	case filter.MatchStartsWith:
		return strings.HasPrefix(have, want)
	case filter.MatchEndsWith:
		return strings.HasSuffix(have, want)
	default:
		return false
	}
}

func matchRange(f filter.RangeFilter, rec Record) bool {
	have, ok := asNumber(rec[f.Field])
	if !ok {
		return false
	}
	if f.Min != nil && have < *f.Min {
		return false
	}
	if f.Max != nil && have > *f.Max {
		return false
	}
	return true
}

func matchDate(f filter.DateFilter, rec Record) bool {
	have, ok := asText(rec[f.Field])
	if !ok || have == "" {
		return false
	}
	// ISO dates order lexicographically, identically to the stored TEXT
	// columns the compiled query compares against.
	if f.Start != "" && have < f.Start {
		return false
	}
	if f.End != "" && have > f.End {
		return false
	}
	return true
}

func matchBool(f filter.BooleanFilter, rec Record) bool {
	have, ok := asBool(rec[f.Field])
	return ok && have == f.Value
}
