// Package file provides the single capture file command.
package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/summary"
)

// Command creates a command that synchronizes one capture file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [capture]",
		Short: "Synchronize a single capture file",
		Long:  "Synchronize one capture export against the event log and write its annotated copy.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, settings, args[0], cmd.OutOrStdout())
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the file command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Input.Captures, "captures", viper.GetString("input.captures"),
		"Capture root; subdirectories below it are mirrored in the output directory")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// Run processes path and prints its outcome to w. A skipped file is reported, not
// returned as an error.
func Run(cmd *cobra.Command, settings *conf.Settings, path string, w io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if settings.Input.Captures == "" {
		settings.Input.Captures = filepath.Dir(abs)
	}

	o, err := analysis.NewFromSettings(settings)
	if err != nil {
		return err
	}
	res, err := o.FileAnalysis(cmd.Context(), abs)
	if err != nil {
		return err
	}
	summary.PrintFile(w, &res)
	return nil
}
