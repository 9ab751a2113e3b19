// Package cli wires the search core into the sift command tree. Commands
// hold no logic of their own beyond flag handling and output formatting;
// everything they do runs through the same public operations the UI
// collaborators use.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sift CLI.
//
// Defaults resolve through viper: an optional sift.yaml in the working
// directory and SIFT_* environment variables seed the db path and output
// format, and explicit flags win over both.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	v := viper.New()
	v.SetConfigName("sift")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SIFT")
	v.AutomaticEnv()
	v.SetDefault("format", "text")
	v.SetDefault("db", "sift.db")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is the normal case.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("sift.yaml unreadable, using defaults", "error", err)
		}
	}

	cmd := &cobra.Command{
		Use:   "sift",
		Short: "sift - archive search-criteria compiler",
		Long:  "Compile, validate, and execute boolean search criteria over archive records.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", v.GetString("format"), "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", v.GetString("db"), "path to the record database")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewShareCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
