package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/schema"
)

// schemaField is the JSON shape of one registry field.
type schemaField struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// schemaType is the JSON shape of one content type listing.
type schemaType struct {
	Name   string        `json:"name"`
	Table  string        `json:"table"`
	Fields []schemaField `json:"fields"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schema [type]",
		Short:         "List content types and their searchable fields",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runSchema(rootOpts, name, cmd)
		},
	}
	return cmd
}

func runSchema(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout())

	reg, err := schema.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load schema registry", err)
	}

	names := reg.TypeNames()
	if name != "" {
		if _, ok := reg.Type(name); !ok {
			return NewExitError(ExitFailure, fmt.Sprintf("unknown content type %q", name))
		}
		names = []string{name}
	}

	var listing []schemaType
	for _, n := range names {
		spec, _ := reg.Type(n)
		st := schemaType{Name: spec.Name, Table: spec.Table}
		for _, f := range spec.Fields() {
			st.Fields = append(st.Fields, schemaField{Name: f.Name, Kind: string(f.Kind)})
		}
		listing = append(listing, st)
	}

	if formatter.IsJSON() {
		if err := formatter.JSON(listing); err != nil {
			return WrapExitError(ExitCommandError, "encode output", err)
		}
		return nil
	}

	for _, st := range listing {
		formatter.Textf("%s (table %s)", st.Name, st.Table)
		for _, f := range st.Fields {
			formatter.Textf("  %-18s %s", f.Name, f.Kind)
		}
	}
	return nil
}
