package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ricki-pierce/integrating4Fears/internal/conf"
)

func TestShowPrintsSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{Sync: conf.SyncSettings{Tolerance: 0.25, AnchorLabel: "QTM Start Command Sent"}}
	cmd := Command(settings)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"show"})
	require.NoError(t, cmd.Execute())

	var decoded conf.Settings
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.InDelta(t, 0.25, decoded.Sync.Tolerance, 1e-9)
	assert.Equal(t, "QTM Start Command Sent", decoded.Sync.AnchorLabel)
}

func TestInitWritesOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "qtmsync", "config.yaml")
	cmd := Command(&conf.Settings{})
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.SetArgs([]string{"init", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrote "+path)

	want, err := conf.DefaultConfig()
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cmd.SetArgs([]string{"init", path})
	assert.Error(t, cmd.Execute(), "existing config is not overwritten")
}
