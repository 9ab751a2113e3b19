// Package filter defines the search-criteria model: flat predicate
// combinations (Config) and hierarchical boolean trees of them (Node).
//
// Everything downstream depends on this package and nothing here depends on
// anything downstream. Values are immutable snapshots: builders upstream
// follow a replace-on-edit discipline, so no consumer ever mutates a config
// or tree in place, and concurrent use needs no locking.
//
// Node is a sealed interface with exactly three shapes:
//
//	Leaf   - wire kind "filter":   evaluates one flat Config
//	Branch - wire kind "operator": combines children with AND or OR
//	Group  - wire kind "group":    combines children with an implicit AND
//
// Group deliberately stores no combinator. It exists for visual and
// precedence grouping only, and the shape itself encodes that: there is no
// field to disagree with the implicit AND.
//
// The package also owns the canonical JSON encoding of a Config
// (MarshalCanonical), the content-addressed identity built on it
// (Fingerprint), and the URL-safe share codec (EncodeString/DecodeString).
// All three exist because equal configs must produce byte-identical
// encodings: external collaborators cache result sets and build share links
// keyed on them.
package filter
