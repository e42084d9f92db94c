package metrics

import "github.com/ricki-pierce/integrating4Fears/internal/logger"

// GetLogger returns the metrics package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("metrics")
}
