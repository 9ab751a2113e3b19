package cli

import (
	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/process"
	"github.com/tannerhall/sift/internal/store"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filterPath  string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Estimate how many records a filter matches",
		Long: `Estimate the result count of a filter through the COUNT(*) variant.

The estimate is advisory: execution failures are logged and reported as
0 rather than failing the command, matching the live-badge contract the
count feeds elsewhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(rootOpts, filterPath, contentType, cmd)
		},
	}

	cmd.Flags().StringVarP(&filterPath, "filter", "f", "", "path to the filter JSON file")
	cmd.Flags().StringVarP(&contentType, "type", "t", "", "content type for tree filters")
	cmd.MarkFlagRequired("filter")

	return cmd
}

func runCount(opts *RootOptions, filterPath, contentType string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout())

	in, reg, err := loadValidatedInput(filterPath, contentType)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.DBPath, reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	var count int64
	if in.IsTree() {
		count = process.EstimateTreeCount(cmd.Context(), reg, in.Tree, filter.ContentType(contentType), st.Rows)
	} else {
		count = process.EstimateCount(cmd.Context(), reg, in.Config, st.Rows)
	}

	if formatter.IsJSON() {
		if err := formatter.JSON(map[string]int64{"count": count}); err != nil {
			return WrapExitError(ExitCommandError, "encode output", err)
		}
		return nil
	}
	formatter.Textf("%d", count)
	return nil
}
