package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/schema"
	"github.com/tannerhall/sift/internal/store"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		contentType string
		csvPath     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load records from a headered CSV file",
		Long: `Load records into the database from a headered CSV file.

Headers map to the content type's registry fields; unknown columns are
skipped. Missing ids are assigned automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, contentType, csvPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "content type to load into")
	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the CSV file")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("csv")

	return cmd
}

func runSeed(opts *RootOptions, contentType, csvPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout())

	reg, err := schema.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load schema registry", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open CSV", err)
	}
	defer f.Close()

	st, err := store.Open(opts.DBPath, reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	n, err := st.SeedCSV(cmd.Context(), filter.ContentType(contentType), f)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("seeding failed after %d record(s)", n), err)
	}

	if formatter.IsJSON() {
		if err := formatter.JSON(map[string]int{"inserted": n}); err != nil {
			return WrapExitError(ExitCommandError, "encode output", err)
		}
		return nil
	}
	formatter.Textf("inserted %d record(s) into %s", n, contentType)
	return nil
}
