// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"

	"github.com/ricki-pierce/integrating4Fears/internal/logger"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("input.log", "")
	viper.SetDefault("input.captures", "")
	viper.SetDefault("input.recursive", false)
	viper.SetDefault("input.extensions", []string{".xlsx", ".csv"})

	viper.SetDefault("output.path", "synced")
	viper.SetDefault("output.suffix", "_synced")
	viper.SetDefault("output.dryrun", false)
	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "qtmsync.db")
	viper.SetDefault("output.metrics.enabled", false)
	viper.SetDefault("output.metrics.path", "qtmsync.prom")

	viper.SetDefault("sync.tolerance", 0.5)
	viper.SetDefault("sync.driftcheck", true)
	viper.SetDefault("sync.anchorlabel", "QTM Start Command Sent")
	viper.SetDefault("sync.milestones", []string{
		"QTM Start Command Sent",
		"QTM Recording Started",
		"Beep Started",
	})
	viper.SetDefault("sync.patterns.lit", `(?i)LED_(\d+)_Lit`)
	viper.SetDefault("sync.patterns.pressed", `(?i)#(\d+)\s*-\s*pressed`)
	viper.SetDefault("sync.patterns.released", `(?i)#(\d+)\s*-\s*released`)
	viper.SetDefault("sync.includereleased", false)
	viper.SetDefault("sync.separator", " | ")
	viper.SetDefault("sync.timezone", "UTC")
	viper.SetDefault("sync.workers", 1)

	viper.SetDefault("layout.headerscanrows", 12)
	viper.SetDefault("layout.fallbackheaderrow", 4)
	viper.SetDefault("layout.dataoffset", 3)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", "debug")
}
