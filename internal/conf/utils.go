package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the directories searched for config.yaml, most
// specific first: the working directory, the per-user config directory and the
// directory of the executable.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	if wd, err := os.Getwd(); err == nil {
		configPaths = append(configPaths, wd)
	}

	userDir, err := userConfigDir()
	if err != nil {
		return nil, err
	}
	configPaths = append(configPaths, userDir)

	if exePath, err := os.Executable(); err == nil {
		configPaths = append(configPaths, filepath.Dir(exePath))
	}

	return configPaths, nil
}

// UserConfigPath is where `config init` writes by default.
func UserConfigPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func userConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}
	if runtime.GOOS == osWindows {
		return filepath.Join(homeDir, "AppData", "Roaming", "qtmsync"), nil
	}
	return filepath.Join(homeDir, ".config", "qtmsync"), nil
}
