// Package analysis drives the synchronization of capture files against the
// behavioral event log: discovery, per-file processing and run reporting.
package analysis

import "github.com/ricki-pierce/integrating4Fears/internal/logger"

// GetLogger returns the analysis package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("analysis")
}
