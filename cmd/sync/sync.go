// Package sync provides the batch synchronization command.
package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/datastore"
	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/observability"
	"github.com/ricki-pierce/integrating4Fears/internal/summary"
)

// Command creates the sync command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [captures]",
		Short: "Synchronize every capture file in a directory",
		Long: `Synchronize every capture file in the capture directory against the event log.
Annotated copies are written to the output directory. Files that cannot be
processed are skipped with a diagnostic; the rest of the batch continues.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				settings.Input.Captures = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, cmd.OutOrStdout())
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the sync command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().BoolVarP(&settings.Input.Recursive, "recursive", "r", viper.GetBool("input.recursive"), "Descend into subdirectories")
	cmd.Flags().StringSliceVar(&settings.Input.Extensions, "ext", viper.GetStringSlice("input.extensions"), "Capture file extensions to process")
	cmd.Flags().IntVarP(&settings.Sync.Workers, "workers", "w", viper.GetInt("sync.workers"), "Number of files processed in parallel")
	cmd.Flags().BoolVar(&settings.Output.SQLite.Enabled, "history", viper.GetBool("output.sqlite.enabled"), "Store the run report in the SQLite history")
	cmd.Flags().StringVar(&settings.Output.SQLite.Path, "history-db", viper.GetString("output.sqlite.path"), "Path of the SQLite history database")
	cmd.Flags().BoolVar(&settings.Output.Metrics.Enabled, "metrics", viper.GetBool("output.metrics.enabled"), "Write Prometheus metrics after the run")
	cmd.Flags().StringVar(&settings.Output.Metrics.Path, "metrics-file", viper.GetString("output.metrics.path"), "Prometheus textfile to write")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// Run executes a batch run with the configured sinks and prints its summary to w.
func Run(ctx context.Context, settings *conf.Settings, w io.Writer) error {
	log := logger.Global().Module("sync")
	if settings.Input.Captures == "" {
		return errors.Newf("no capture directory given: pass it as an argument or set input.captures").
			Component("sync").
			Category(errors.CategoryConfiguration).
			Build()
	}

	var opts []analysis.Option

	var m *observability.Metrics
	if settings.Output.Metrics.Enabled {
		var err error
		if m, err = observability.NewMetrics(); err != nil {
			return err
		}
		opts = append(opts, analysis.WithRecorder(m.Recorder()))
	}

	if settings.Output.SQLite.Enabled {
		var dsOpts []datastore.Option
		if m != nil {
			dsOpts = append(dsOpts, datastore.WithMetrics(m.Datastore))
		}
		store, err := datastore.Open(settings.Output.SQLite.Path, settings.Debug, dsOpts...)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("failed to close run history", logger.Error(err))
			}
		}()
		opts = append(opts, analysis.WithReportSink(store))
	}

	o, err := analysis.NewFromSettings(settings, opts...)
	if err != nil {
		return err
	}

	report, runErr := o.DirectoryAnalysis(ctx)
	if report != nil {
		summary.PrintReport(w, report)
		if m != nil {
			m.ObserveReport(report)
			if err := m.WriteTextfile(settings.Output.Metrics.Path); err != nil {
				log.Error("failed to write metrics", logger.Error(err))
			}
		}
	}
	return runErr
}
