// conf/validate.go

package conf

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateInputSettings(&settings.Input); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateSyncSettings(&settings.Sync); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLayoutSettings(&settings.Layout); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Logging.DefaultLevel != "" {
		if err := validateEnvLogLevel(settings.Logging.DefaultLevel); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateInputSettings(settings *InputSettings) error {
	var errs []string

	if len(settings.Extensions) == 0 {
		errs = append(errs, "input.extensions must list at least one extension")
	}
	for _, ext := range settings.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Sprintf("input extension %q must start with '.'", ext))
		}
	}

	return joinErrs("input", errs)
}

func validateOutputSettings(settings *OutputSettings) error {
	var errs []string

	if settings.Path == "" {
		errs = append(errs, "output.path must not be empty")
	}
	if settings.Suffix == "" {
		errs = append(errs, "output.suffix must not be empty")
	} else if err := validateEnvSuffix(settings.Suffix); err != nil {
		errs = append(errs, err.Error())
	}
	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		errs = append(errs, "output.sqlite.path is required when SQLite output is enabled")
	}
	if settings.Metrics.Enabled && settings.Metrics.Path == "" {
		errs = append(errs, "output.metrics.path is required when metrics output is enabled")
	}

	return joinErrs("output", errs)
}

func validateSyncSettings(settings *SyncSettings) error {
	var errs []string

	if settings.Tolerance < 0 {
		errs = append(errs, fmt.Sprintf("sync.tolerance must be non-negative, got %g", settings.Tolerance))
	}
	if strings.TrimSpace(settings.AnchorLabel) == "" {
		errs = append(errs, "sync.anchorlabel must not be empty")
	}
	for name, expr := range map[string]string{
		"lit":      settings.Patterns.Lit,
		"pressed":  settings.Patterns.Pressed,
		"released": settings.Patterns.Released,
	} {
		if expr == "" {
			continue
		}
		if _, err := regexp.Compile(expr); err != nil {
			errs = append(errs, fmt.Sprintf("sync.patterns.%s is not a valid regular expression: %v", name, err))
		}
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("sync.timezone %q is not a known location", settings.Timezone))
	}
	if settings.Workers < 1 {
		errs = append(errs, fmt.Sprintf("sync.workers must be at least 1, got %d", settings.Workers))
	}

	return joinErrs("sync", errs)
}

func validateLayoutSettings(settings *LayoutSettings) error {
	var errs []string

	if settings.HeaderScanRows < 1 {
		errs = append(errs, "layout.headerscanrows must be at least 1")
	}
	if settings.FallbackHeaderRow < 1 {
		errs = append(errs, "layout.fallbackheaderrow is 1-indexed and must be at least 1")
	}
	if settings.DataOffset < 1 {
		errs = append(errs, "layout.dataoffset must be at least 1")
	}

	return joinErrs("layout", errs)
}

func joinErrs(section string, errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s settings errors: %v", section, errs)
}
