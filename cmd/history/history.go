// Package history provides commands to browse the SQLite run history.
package history

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/datastore"
	"github.com/ricki-pierce/integrating4Fears/internal/summary"
)

// Command creates the history command.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List stored runs or show one run",
		Long:  "Without arguments the most recent runs are listed. With a run ID the outcome of every file of that run is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(settings.Output.SQLite.Path); err != nil {
				return fmt.Errorf("no run history at %s: %w", settings.Output.SQLite.Path, err)
			}
			store, err := datastore.Open(settings.Output.SQLite.Path, settings.Debug)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				summary.PrintRun(cmd.OutOrStdout(), run)
				return nil
			}

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			summary.PrintRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list, 0 for all")
	cmd.Flags().StringVar(&settings.Output.SQLite.Path, "history-db", viper.GetString("output.sqlite.path"), "Path of the SQLite history database")

	return cmd
}
