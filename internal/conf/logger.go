package conf

import "github.com/ricki-pierce/integrating4Fears/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
// The logger is fetched from the global logger each time so it follows the
// central logger once that is installed.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
