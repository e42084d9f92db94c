package eventlog

import "github.com/ricki-pierce/integrating4Fears/internal/logger"

// GetLogger returns the event log package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("eventlog")
}
