package cli

import (
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/process"
	"github.com/tannerhall/sift/internal/querysql"
	"github.com/tannerhall/sift/internal/schema"
	"github.com/tannerhall/sift/internal/store"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filterPath  string
		contentType string
		optimize    bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Execute a filter against the record database",
		Long: `Compile a filter file and execute it against the record database.

The filter is validated first; an invalid filter exits 1 without touching
the database. Tree files need --type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, filterPath, contentType, optimize, limit, cmd)
		},
	}

	cmd.Flags().StringVarP(&filterPath, "filter", "f", "", "path to the filter JSON file")
	cmd.Flags().StringVarP(&contentType, "type", "t", "", "content type for tree filters")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "remove duplicate predicates before executing")
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many records (0 = all)")
	cmd.MarkFlagRequired("filter")

	return cmd
}

func runSearch(opts *RootOptions, filterPath, contentType string, optimize bool, limit int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout())

	in, reg, err := loadValidatedInput(filterPath, contentType)
	if err != nil {
		return err
	}

	q, err := compileInput(reg, in, contentType, false)
	if err != nil {
		return WrapExitError(ExitFailure, "compilation failed", err)
	}
	if optimize {
		q = querysql.Optimize(q)
	}
	slog.Debug("executing search", "sql", q.Text, "params", len(q.Params))

	st, err := store.Open(opts.DBPath, reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	rows, err := st.Search(cmd.Context(), q)
	if err != nil {
		return WrapExitError(ExitCommandError, "query failed", err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	if formatter.IsJSON() {
		if err := formatter.JSON(rows); err != nil {
			return WrapExitError(ExitCommandError, "encode output", err)
		}
		return nil
	}

	formatter.Textf("%d record(s)", len(rows))
	for _, rec := range rows {
		formatter.Textf("- %s", rec.ID())
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if k != "id" && k != "relevance" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			formatter.Textf("    %s: %v", k, rec[k])
		}
	}
	return nil
}

// loadValidatedInput loads a filter file, loads the registry, and runs
// validation, mapping each failure mode to its exit code.
func loadValidatedInput(filterPath, contentType string) (*FilterInput, *schema.Registry, error) {
	in, err := LoadFilterFile(filterPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "cannot load filter", err)
	}
	if in.IsTree() && contentType == "" {
		return nil, nil, NewExitError(ExitCommandError, "tree filters require --type")
	}

	reg, err := schema.Load()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "cannot load schema registry", err)
	}

	configs := leafConfigs(in.Tree)
	if !in.IsTree() {
		configs = []filter.Config{in.Config}
	}
	for _, cfg := range configs {
		if vr := process.Validate(reg, cfg); !vr.Valid {
			return nil, nil, NewExitError(ExitFailure, "invalid filter: "+vr.Errors[0].Error())
		}
	}

	return in, reg, nil
}
