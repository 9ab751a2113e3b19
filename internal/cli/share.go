package cli

import (
	"github.com/spf13/cobra"

	"github.com/tannerhall/sift/internal/filter"
)

// NewShareCommand creates the share command group.
func NewShareCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode URL-safe filter share strings",
	}
	cmd.AddCommand(newShareEncodeCommand(rootOpts))
	cmd.AddCommand(newShareDecodeCommand(rootOpts))
	return cmd
}

func newShareEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	var filterPath string

	cmd := &cobra.Command{
		Use:           "encode",
		Short:         "Encode a flat filter file as a URL-safe string",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout())

			in, err := LoadFilterFile(filterPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot load filter", err)
			}
			if in.IsTree() {
				return NewExitError(ExitCommandError, "share strings carry flat configs, not trees")
			}

			s, err := filter.EncodeString(in.Config)
			if err != nil {
				return WrapExitError(ExitFailure, "encoding failed", err)
			}

			if formatter.IsJSON() {
				if err := formatter.JSON(map[string]string{"share": s}); err != nil {
					return WrapExitError(ExitCommandError, "encode output", err)
				}
				return nil
			}
			formatter.Textf("%s", s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filterPath, "filter", "f", "", "path to the filter JSON file")
	cmd.MarkFlagRequired("filter")
	return cmd
}

func newShareDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "decode <share-string>",
		Short:         "Decode a share string back to its filter config",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout())

			cfg, err := filter.DecodeString(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "decoding failed", err)
			}

			if formatter.IsJSON() {
				if err := formatter.JSON(cfg); err != nil {
					return WrapExitError(ExitCommandError, "encode output", err)
				}
				return nil
			}

			// Text output is the canonical JSON document itself; it is
			// the exact payload inside the share string.
			canonical, err := filter.MarshalCanonical(cfg)
			if err != nil {
				return WrapExitError(ExitFailure, "re-encode failed", err)
			}
			formatter.Textf("%s", canonical)
			return nil
		},
	}
	return cmd
}
