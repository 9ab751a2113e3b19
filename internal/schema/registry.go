// Package schema compiles the embedded content-type registry and answers
// field-allow-list questions for the validator and the query compiler.
//
// The registry is the injection boundary: filter values are always bound as
// parameters, but field names become column names in query text. A field name
// that does not resolve through this registry never reaches the compiler.
package schema

import (
	_ "embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE []byte

// Kind classifies a field's value space. It determines which filter
// categories may target the field and how stored values are coerced.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindDate   Kind = "date"
	KindBool   Kind = "bool"
)

// ValidKinds defines the allowed field kinds.
var ValidKinds = map[Kind]bool{
	KindText:   true,
	KindNumber: true,
	KindDate:   true,
	KindBool:   true,
}

// FieldSpec describes one searchable field of a content type.
type FieldSpec struct {
	Name   string // public field name, as it appears in filters
	Column string // storage column the compiler splices into query text
	Kind   Kind
}

// TypeSpec describes one content type: its storage table and field allow-list.
type TypeSpec struct {
	Name   string
	Table  string
	fields map[string]FieldSpec
	names  []string // sorted field names
}

// Field looks up a field by its public name.
func (t *TypeSpec) Field(name string) (FieldSpec, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// FieldNames returns the allow-list in sorted order.
func (t *TypeSpec) FieldNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Fields returns all field specs sorted by name.
func (t *TypeSpec) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.fields[name])
	}
	return out
}

// Registry holds every content type. Immutable after Load; safe for
// concurrent use.
type Registry struct {
	types map[string]*TypeSpec
	names []string // sorted type names
}

// Type looks up a content type by name.
func (r *Registry) Type(name string) (*TypeSpec, bool) {
	t, ok := r.types[name]
	return t, ok
}

// TypeNames returns the registered content-type names in sorted order.
func (r *Registry) TypeNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Load compiles the embedded registry document.
func Load() (*Registry, error) {
	return parse(schemaCUE, "schema.cue")
}

// MustLoad is Load for the embedded document, where a failure is a build
// defect rather than a runtime condition.
func MustLoad() *Registry {
	reg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("schema: embedded registry failed to load: %v", err))
	}
	return reg
}

// parse compiles a registry document from CUE source.
func parse(src []byte, filename string) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("contentTypes"))
	if !root.Exists() {
		return nil, &SchemaError{
			Path:    "contentTypes",
			Message: "contentTypes is required",
			Pos:     v.Pos(),
		}
	}

	reg := &Registry{types: make(map[string]*TypeSpec)}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		spec, err := parseType(name, iter.Value())
		if err != nil {
			return nil, err
		}
		reg.types[name] = spec
		reg.names = append(reg.names, name)
	}
	sort.Strings(reg.names)

	if len(reg.names) == 0 {
		return nil, &SchemaError{
			Path:    "contentTypes",
			Message: "at least one content type is required",
			Pos:     root.Pos(),
		}
	}
	return reg, nil
}

// parseType extracts one content type definition.
func parseType(name string, v cue.Value) (*TypeSpec, error) {
	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &SchemaError{
			Path:    fmt.Sprintf("contentTypes.%s.table", name),
			Message: "table is required",
			Pos:     v.Pos(),
		}
	}
	table, err := tableVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	spec := &TypeSpec{
		Name:   name,
		Table:  table,
		fields: make(map[string]FieldSpec),
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &SchemaError{
			Path:    fmt.Sprintf("contentTypes.%s.fields", name),
			Message: "fields are required",
			Pos:     v.Pos(),
		}
	}
	fieldIter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for fieldIter.Next() {
		fieldName := fieldIter.Label()
		field, err := parseField(name, fieldName, fieldIter.Value())
		if err != nil {
			return nil, err
		}
		spec.fields[fieldName] = field
		spec.names = append(spec.names, fieldName)
	}
	sort.Strings(spec.names)

	if len(spec.names) == 0 {
		return nil, &SchemaError{
			Path:    fmt.Sprintf("contentTypes.%s.fields", name),
			Message: "at least one field is required",
			Pos:     fieldsVal.Pos(),
		}
	}
	return spec, nil
}

// parseField extracts one field definition.
func parseField(typeName, fieldName string, v cue.Value) (FieldSpec, error) {
	path := fmt.Sprintf("contentTypes.%s.fields.%s", typeName, fieldName)

	columnVal := v.LookupPath(cue.ParsePath("column"))
	if !columnVal.Exists() {
		return FieldSpec{}, &SchemaError{Path: path, Message: "column is required", Pos: v.Pos()}
	}
	column, err := columnVal.String()
	if err != nil {
		return FieldSpec{}, formatCUEError(err)
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return FieldSpec{}, &SchemaError{Path: path, Message: "kind is required", Pos: v.Pos()}
	}
	kindStr, err := kindVal.String()
	if err != nil {
		return FieldSpec{}, formatCUEError(err)
	}
	kind := Kind(kindStr)
	if !ValidKinds[kind] {
		return FieldSpec{}, &SchemaError{
			Path:    path,
			Message: fmt.Sprintf("unknown kind %q: must be text, number, date, or bool", kindStr),
			Pos:     kindVal.Pos(),
		}
	}

	return FieldSpec{Name: fieldName, Column: column, Kind: kind}, nil
}

// SchemaError represents a registry definition error with source position.
type SchemaError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &SchemaError{
			Path:    "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
