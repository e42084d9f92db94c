// Package conf provides configuration management for qtmsync. Settings come from
// built-in defaults, an optional config.yaml, QTMSYNC_* environment variables and
// command line flags, in increasing order of precedence.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// InputSettings selects the behavioral log and capture files.
type InputSettings struct {
	Log        string   `yaml:"log"`        // behavioral event log (.xlsx or .csv)
	Captures   string   `yaml:"captures"`   // directory of capture exports
	Recursive  bool     `yaml:"recursive"`  // descend into subdirectories
	Extensions []string `yaml:"extensions"` // capture file extensions to consider
}

// SQLiteSettings controls the optional run history database.
type SQLiteSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsSettings controls the Prometheus textfile export.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputSettings controls where annotated files go.
type OutputSettings struct {
	Path    string          `yaml:"path"`   // output directory, never the capture directory itself
	Suffix  string          `yaml:"suffix"` // appended to the capture base name
	DryRun  bool            `yaml:"dryrun"` // run the pipeline without writing files
	SQLite  SQLiteSettings  `yaml:"sqlite"`
	Metrics MetricsSettings `yaml:"metrics"`
}

// PatternSettings are the regular expressions recognizing numbered events.
type PatternSettings struct {
	Lit      string `yaml:"lit"`
	Pressed  string `yaml:"pressed"`
	Released string `yaml:"released"`
}

// SyncSettings tune event matching.
type SyncSettings struct {
	Tolerance       float64         `yaml:"tolerance"`  // drift warning threshold in seconds
	DriftCheck      bool            `yaml:"driftcheck"` // false disables drift warnings
	AnchorLabel     string          `yaml:"anchorlabel"`
	Milestones      []string        `yaml:"milestones"`
	Patterns        PatternSettings `yaml:"patterns"`
	IncludeReleased bool            `yaml:"includereleased"`
	Separator       string          `yaml:"separator"`
	Timezone        string          `yaml:"timezone"` // location of naive log timestamps
	Workers         int             `yaml:"workers"`
}

// LayoutSettings tune capture header detection. Rows are 1-indexed here to match
// what users see in a spreadsheet.
type LayoutSettings struct {
	HeaderScanRows    int `yaml:"headerscanrows"`
	FallbackHeaderRow int `yaml:"fallbackheaderrow"`
	DataOffset        int `yaml:"dataoffset"`
}

// Settings is the complete qtmsync configuration.
type Settings struct {
	Debug   bool                 `yaml:"debug"`
	Input   InputSettings        `yaml:"input"`
	Output  OutputSettings       `yaml:"output"`
	Sync    SyncSettings         `yaml:"sync"`
	Layout  LayoutSettings       `yaml:"layout"`
	Logging logger.LoggingConfig `yaml:"logging"`
}

// DriftTolerance returns the tolerance in seconds, or nil when drift checking is off.
func (s *Settings) DriftTolerance() *float64 {
	if !s.Sync.DriftCheck {
		return nil
	}
	t := s.Sync.Tolerance
	return &t
}

// Location resolves Sync.Timezone.
func (s *Settings) Location() (*time.Location, error) {
	return time.LoadLocation(s.Sync.Timezone)
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads defaults, the config file and environment variables into a Settings
// and validates the result. A missing config file is not an error.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, binds environment variables and reads config.yaml from
// the first default path containing one.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			GetLogger().Debug("no config file found, using defaults")
			return nil
		}
		return errors.New(fmt.Errorf("fatal error reading config file: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	GetLogger().Debug("loaded config file", logger.String("path", viper.ConfigFileUsed()))
	return nil
}

// GetSettings returns the settings from the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// DefaultConfig returns the embedded default config.yaml.
func DefaultConfig() ([]byte, error) {
	return fs.ReadFile(configFiles, "config.yaml")
}

// WriteDefaultConfig writes the embedded default config to path. An existing file is
// never overwritten.
func WriteDefaultConfig(path string) error {
	data, err := DefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileError(fmt.Errorf("error creating directories for config file: %w", err), path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.FileError(fmt.Errorf("error creating config file: %w", err), path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.FileError(fmt.Errorf("error writing config file: %w", err), path)
	}
	return f.Close()
}

// MarshalYAML renders settings as YAML.
func MarshalYAML(settings *Settings) ([]byte, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return data, nil
}
