package cli

import (
	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/querysql"
	"github.com/tannerhall/sift/internal/schema"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filterPath  string
		contentType string
		count       bool
		optimize    bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a filter file to parameterized SQL",
		Long: `Compile a filter file and print the statement and its bind values.

Tree files compile through the recursive tree compiler and need --type
for the target content type (flat configs carry their own). --count
produces the COUNT(*) variant, --optimize runs the duplicate-predicate
pass over the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, filterPath, contentType, count, optimize, cmd)
		},
	}

	cmd.Flags().StringVarP(&filterPath, "filter", "f", "", "path to the filter JSON file")
	cmd.Flags().StringVarP(&contentType, "type", "t", "", "content type for tree filters")
	cmd.Flags().BoolVar(&count, "count", false, "compile the COUNT(*) variant")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "remove duplicate predicates")
	cmd.MarkFlagRequired("filter")

	return cmd
}

// compileInput compiles a loaded filter input, honoring the count flag.
func compileInput(reg *schema.Registry, in *FilterInput, contentType string, count bool) (querysql.CompiledQuery, error) {
	compiler := querysql.NewCompiler(reg)
	if in.IsTree() {
		ct := filter.ContentType(contentType)
		if count {
			return compiler.CompileTreeCount(in.Tree, ct)
		}
		return compiler.CompileTree(in.Tree, ct)
	}
	if count {
		return compiler.CompileCount(in.Config)
	}
	return compiler.Compile(in.Config)
}

func runCompile(opts *RootOptions, filterPath, contentType string, count, optimize bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout())

	in, err := LoadFilterFile(filterPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load filter", err)
	}
	if in.IsTree() && contentType == "" {
		return NewExitError(ExitCommandError, "tree filters require --type")
	}

	reg, err := schema.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load schema registry", err)
	}

	q, err := compileInput(reg, in, contentType, count)
	if err != nil {
		return WrapExitError(ExitFailure, "compilation failed", err)
	}
	if optimize {
		q = querysql.Optimize(q)
	}

	if formatter.IsJSON() {
		if err := formatter.JSON(q); err != nil {
			return WrapExitError(ExitCommandError, "encode output", err)
		}
		return nil
	}

	formatter.Textf("%s", q.Text)
	for i, p := range q.Params {
		formatter.Textf("  [%d] %v", i, p)
	}
	return nil
}
