package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/process"
	"github.com/tannerhall/sift/internal/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filterPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a filter file against the content-type registry",
		Long: `Validate a filter file without compiling or executing it.

Flat configs are validated directly. Tree files are validated leaf by
leaf, since validation is defined per flat combination. All problems are
reported at once; exit code 1 means the filter is invalid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, filterPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&filterPath, "filter", "f", "", "path to the filter JSON file")
	cmd.MarkFlagRequired("filter")

	return cmd
}

func runValidate(opts *RootOptions, filterPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout())

	in, err := LoadFilterFile(filterPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load filter", err)
	}

	reg, err := schema.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot load schema registry", err)
	}

	var errs []process.ValidationError
	if in.IsTree() {
		for _, cfg := range leafConfigs(in.Tree) {
			errs = append(errs, process.Validate(reg, cfg).Errors...)
		}
	} else {
		errs = process.Validate(reg, in.Config).Errors
	}

	result := process.ValidationResult{Valid: len(errs) == 0, Errors: errs}

	if formatter.IsJSON() {
		if err := formatter.JSON(result); err != nil {
			return WrapExitError(ExitCommandError, "encode output", err)
		}
	} else if result.Valid {
		formatter.Textf("filter is valid")
	} else {
		formatter.Textf("filter is invalid:")
		for _, e := range result.Errors {
			formatter.Textf("  %s", e.Error())
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}
	return nil
}
