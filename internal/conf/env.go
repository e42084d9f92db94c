// env.go - Environment variable configuration and validation for qtmsync
package conf

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Inputs and outputs
		{"input.log", "QTMSYNC_INPUT_LOG", nil},
		{"input.captures", "QTMSYNC_INPUT_CAPTURES", nil},
		{"input.recursive", "QTMSYNC_INPUT_RECURSIVE", validateEnvBool},
		{"output.path", "QTMSYNC_OUTPUT_PATH", nil},
		{"output.suffix", "QTMSYNC_OUTPUT_SUFFIX", validateEnvSuffix},
		{"output.dryrun", "QTMSYNC_OUTPUT_DRYRUN", validateEnvBool},
		{"output.sqlite.enabled", "QTMSYNC_OUTPUT_SQLITE_ENABLED", validateEnvBool},
		{"output.sqlite.path", "QTMSYNC_OUTPUT_SQLITE_PATH", nil},
		{"output.metrics.enabled", "QTMSYNC_OUTPUT_METRICS_ENABLED", validateEnvBool},
		{"output.metrics.path", "QTMSYNC_OUTPUT_METRICS_PATH", nil},

		// Matching
		{"sync.tolerance", "QTMSYNC_SYNC_TOLERANCE", validateEnvTolerance},
		{"sync.driftcheck", "QTMSYNC_SYNC_DRIFTCHECK", validateEnvBool},
		{"sync.anchorlabel", "QTMSYNC_SYNC_ANCHORLABEL", nil},
		{"sync.includereleased", "QTMSYNC_SYNC_INCLUDERELEASED", validateEnvBool},
		{"sync.timezone", "QTMSYNC_SYNC_TIMEZONE", validateEnvTimezone},
		{"sync.workers", "QTMSYNC_SYNC_WORKERS", validateEnvWorkers},

		// Logging
		{"logging.default_level", "QTMSYNC_LOG_LEVEL", validateEnvLogLevel},
		{"debug", "QTMSYNC_DEBUG", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars()
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvTolerance(value string) error {
	tol, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid tolerance: %w", err)
	}
	if tol < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %g", tol)
	}
	return nil
}

func validateEnvWorkers(value string) error {
	workers, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid workers: %w", err)
	}
	if workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", workers)
	}
	return nil
}

func validateEnvTimezone(value string) error {
	if _, err := time.LoadLocation(value); err != nil {
		return fmt.Errorf("unknown timezone: %w", err)
	}
	return nil
}

// suffixPattern allows the characters that survive on every filesystem.
var suffixPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validateEnvSuffix(value string) error {
	if !suffixPattern.MatchString(value) {
		return fmt.Errorf("suffix may only contain letters, digits, '_', '-' and '.', got '%s'", value)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("log level must be one of trace, debug, info, warn, error, got '%s'", value)
}
