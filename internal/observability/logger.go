package observability

import "github.com/ricki-pierce/integrating4Fears/internal/logger"

// GetLogger returns the observability package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("observability")
}
