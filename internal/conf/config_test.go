package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate points the config search at empty directories. Tests using it share the
// global viper instance and must not run in parallel.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{".xlsx", ".csv"}, settings.Input.Extensions)
	assert.Equal(t, "synced", settings.Output.Path)
	assert.Equal(t, "_synced", settings.Output.Suffix)
	assert.InDelta(t, 0.5, settings.Sync.Tolerance, 1e-12)
	assert.True(t, settings.Sync.DriftCheck)
	assert.Equal(t, "QTM Start Command Sent", settings.Sync.AnchorLabel)
	assert.Len(t, settings.Sync.Milestones, 3)
	assert.Equal(t, `(?i)LED_(\d+)_Lit`, settings.Sync.Patterns.Lit)
	assert.Equal(t, " | ", settings.Sync.Separator)
	assert.Equal(t, 1, settings.Sync.Workers)
	assert.Equal(t, 12, settings.Layout.HeaderScanRows)
	assert.Equal(t, 4, settings.Layout.FallbackHeaderRow)
	assert.Equal(t, 3, settings.Layout.DataOffset)
	assert.Equal(t, "info", settings.Logging.DefaultLevel)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)

	require.NotNil(t, settings.DriftTolerance())
	assert.InDelta(t, 0.5, *settings.DriftTolerance(), 1e-12)
	assert.Same(t, settings, GetSettings())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := isolate(t)

	cfg := "sync:\n  tolerance: 0.25\n  driftcheck: false\n  timezone: America/Chicago\noutput:\n  path: out\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600))
	t.Setenv("QTMSYNC_OUTPUT_SUFFIX", "_matched")
	t.Setenv("QTMSYNC_SYNC_WORKERS", "4")

	settings, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.25, settings.Sync.Tolerance, 1e-12)
	assert.Nil(t, settings.DriftTolerance(), "drift check disabled")
	assert.Equal(t, "out", settings.Output.Path)
	assert.Equal(t, "_matched", settings.Output.Suffix)
	assert.Equal(t, 4, settings.Sync.Workers)

	loc, err := settings.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
}

func TestLoadFindsUserConfig(t *testing.T) {
	dir := isolate(t)

	paths, err := GetDefaultConfigPaths()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(paths), 2)
	assert.Equal(t, dir, paths[0], "working directory is searched first")

	userPath, err := UserConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(userPath), paths[1])

	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o750))
	require.NoError(t, os.WriteFile(userPath, []byte("output:\n  path: from-user-dir\n"), 0o600))

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-user-dir", settings.Output.Path)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("QTMSYNC_SYNC_WORKERS", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QTMSYNC_SYNC_WORKERS")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("sync:\n  tolerance: -1\n"), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync.tolerance")
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "sync")

	err = WriteDefaultConfig(path)
	require.Error(t, err, "existing config is never overwritten")
}

func TestEmbeddedConfigMatchesDefaults(t *testing.T) {
	dir := isolate(t)

	data, err := DefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o600))

	fromFile, err := Load()
	require.NoError(t, err)

	viper.Reset()
	require.NoError(t, os.Remove(filepath.Join(dir, "config.yaml")))
	fromDefaults, err := Load()
	require.NoError(t, err)

	assert.Equal(t, fromDefaults.Sync, fromFile.Sync)
	assert.Equal(t, fromDefaults.Layout, fromFile.Layout)
	assert.Equal(t, fromDefaults.Output, fromFile.Output)
	assert.Equal(t, fromDefaults.Input, fromFile.Input)
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	s := &Settings{Sync: SyncSettings{Tolerance: 0.5, AnchorLabel: "QTM Start Command Sent"}}
	data, err := MarshalYAML(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), "anchorlabel: QTM Start Command Sent")
	assert.Contains(t, string(data), "tolerance: 0.5")
}
