// Package inspect provides the capture inspection command.
package inspect

import (
	"github.com/spf13/cobra"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/summary"
)

// Command creates the inspect command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [capture]",
		Short: "Show how a capture file would be read",
		Long: `Print the identity parsed from the file name and the detected layout of a
capture file without writing anything. When an event log is configured the
number of log events and start anchors for the trial is shown as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := analysis.NewFromSettings(settings)
			if err != nil {
				return err
			}
			if settings.Input.Log != "" {
				if err := o.LoadLog(); err != nil {
					logger.Global().Module("inspect").Warn("event log not loaded", logger.Error(err))
				}
			}

			ins, err := o.Inspect(args[0])
			if err != nil {
				return err
			}
			summary.PrintInspection(cmd.OutOrStdout(), &ins)
			return nil
		},
	}
}
