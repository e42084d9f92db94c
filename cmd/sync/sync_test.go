package sync

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/datastore"
	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

const logCSV = `Subject ID,Task Name,Trial,Timestamp,Event
S002,Reach,3,14:00:00.000,QTM Start Command Sent
S002,Reach,3,14:00:00.480,LED_1_Lit
`

const captureCSV = `Frame,Time
,
,
1,0.000
2,0.500
`

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	root := t.TempDir()
	captures := filepath.Join(root, "qtm")
	require.NoError(t, os.MkdirAll(captures, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "log.csv"), []byte(logCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(captures, "Reach_Trial3_S002.csv"), []byte(captureCSV), 0o600))

	return &conf.Settings{
		Input: conf.InputSettings{
			Log:        filepath.Join(root, "log.csv"),
			Captures:   captures,
			Extensions: []string{".csv"},
		},
		Output: conf.OutputSettings{
			Path:    filepath.Join(root, "synced"),
			Suffix:  "_synced",
			SQLite:  conf.SQLiteSettings{Path: filepath.Join(root, "history.db")},
			Metrics: conf.MetricsSettings{Path: filepath.Join(root, "qtmsync.prom")},
		},
		Sync: conf.SyncSettings{
			Tolerance:   0.5,
			DriftCheck:  true,
			AnchorLabel: "QTM Start Command Sent",
			Milestones:  []string{"QTM Start Command Sent"},
			Patterns:    conf.PatternSettings{Lit: `(?i)LED_(\d+)_Lit`},
			Separator:   " | ",
			Timezone:    "UTC",
			Workers:     1,
		},
		Layout: conf.LayoutSettings{HeaderScanRows: 12, FallbackHeaderRow: 4, DataOffset: 3},
	}
}

func TestRunWritesOutputHistoryAndMetrics(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Output.SQLite.Enabled = true
	settings.Output.Metrics.Enabled = true

	var out bytes.Buffer
	require.NoError(t, Run(t.Context(), settings, &out))

	assert.Contains(t, out.String(), "1 file: 1 saved, 0 skipped, 0 failed")
	assert.FileExists(t, filepath.Join(settings.Output.Path, "Reach_Trial3_S002_synced.csv"))

	prom, err := os.ReadFile(settings.Output.Metrics.Path)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `qtmsync_files_total{stage="saved",status="saved"} 1`)
	assert.Contains(t, string(prom), "qtmsync_db_operations_total")

	store, err := datastore.Open(settings.Output.SQLite.Path, false)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Saved)
}

func TestRunRequiresCaptureDirectory(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Input.Captures = ""
	err := Run(t.Context(), settings, &bytes.Buffer{})
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestCommandTakesCapturesArgument(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	captures := settings.Input.Captures
	settings.Input.Captures = ""

	cmd := Command(settings)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{captures, "--workers", "2"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, captures, settings.Input.Captures)
	assert.Equal(t, 2, settings.Sync.Workers)
	assert.Contains(t, out.String(), "Reach_Trial3_S002.csv")
}
