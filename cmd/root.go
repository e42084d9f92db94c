package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ricki-pierce/integrating4Fears/cmd/config"
	"github.com/ricki-pierce/integrating4Fears/cmd/file"
	"github.com/ricki-pierce/integrating4Fears/cmd/history"
	"github.com/ricki-pierce/integrating4Fears/cmd/inspect"
	"github.com/ricki-pierce/integrating4Fears/cmd/sync"
	"github.com/ricki-pierce/integrating4Fears/internal/buildinfo"
	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qtmsync",
		Short: "Synchronize QTM capture exports with behavioral event logs",
		Long: `qtmsync annotates motion capture exports with the events of a behavioral log.
Each capture row gets its absolute time and the log events that happened
closest to it; the inputs are never modified.`,
		Version:      build.String(),
		SilenceUsage: true,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		sync.Command(settings),
		file.Command(settings),
		inspect.Command(settings),
		history.Command(settings),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(settings)
	}

	return rootCmd
}

// initialize runs after flag parsing: flags may have changed settings, so they are
// validated again before the logger is rebuilt with the final levels.
func initialize(settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	cl, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	logger.SetGlobal(cl)
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVarP(&settings.Input.Log, "log", "l", viper.GetString("input.log"), "Behavioral event log (.xlsx or .csv)")
	flags.StringVarP(&settings.Output.Path, "output", "o", viper.GetString("output.path"), "Directory for synced copies")
	flags.StringVar(&settings.Output.Suffix, "suffix", viper.GetString("output.suffix"), "Suffix appended to synced file names")
	flags.BoolVarP(&settings.Output.DryRun, "dry-run", "n", viper.GetBool("output.dryrun"), "Run the pipeline without writing files")
	flags.Float64VarP(&settings.Sync.Tolerance, "tolerance", "t", viper.GetFloat64("sync.tolerance"), "Drift warning threshold in seconds")
	flags.BoolVar(&settings.Sync.DriftCheck, "drift-check", viper.GetBool("sync.driftcheck"), "Warn when a match differs by more than the tolerance")
	flags.StringVar(&settings.Sync.Timezone, "timezone", viper.GetString("sync.timezone"), "Time zone of log timestamps without an offset")
	flags.BoolVar(&settings.Sync.IncludeReleased, "include-released", viper.GetBool("sync.includereleased"), "Also match button release events")

	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
