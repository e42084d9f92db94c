package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
)

func TestRecorderFeedsCollectors(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	rec := m.Recorder()
	rec.RecordFile(analysis.StatusSaved, analysis.StageSaved, 20*time.Millisecond)
	rec.RecordFile(analysis.StatusSkipped, analysis.StageFiltered, time.Millisecond)
	rec.RecordFile(analysis.StatusSkipped, analysis.StageFiltered, time.Millisecond)
	rec.RecordDrift(0.02, false)
	rec.RecordDrift(1.2, true)
	rec.RecordParseFailures("frame", 3)
	rec.RecordParseFailures("event", 0)

	expected := `
# HELP qtmsync_files_total Capture files processed, by outcome status and last pipeline stage
# TYPE qtmsync_files_total counter
qtmsync_files_total{stage="filtered",status="skipped"} 2
qtmsync_files_total{stage="saved",status="saved"} 1
# HELP qtmsync_drift_warnings_total Matches whose difference exceeded the drift tolerance
# TYPE qtmsync_drift_warnings_total counter
qtmsync_drift_warnings_total 1
# HELP qtmsync_parse_failures_total Cells that could not be parsed, by kind (frame, event)
# TYPE qtmsync_parse_failures_total counter
qtmsync_parse_failures_total{kind="frame"} 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"qtmsync_files_total", "qtmsync_drift_warnings_total", "qtmsync_parse_failures_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "qtmsync_match_diff_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestObserveReport(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	finished := time.Unix(1758808800, 0)
	m.ObserveReport(&analysis.Report{FinishedAt: finished})
	m.ObserveReport(&analysis.Report{FinishedAt: finished, Canceled: true})
	m.ObserveReport(nil)

	expected := `
# HELP qtmsync_runs_total Batch runs, by result (completed, canceled)
# TYPE qtmsync_runs_total counter
qtmsync_runs_total{result="canceled"} 1
qtmsync_runs_total{result="completed"} 1
# HELP qtmsync_last_run_timestamp_seconds Unix time the last batch run finished
# TYPE qtmsync_last_run_timestamp_seconds gauge
qtmsync_last_run_timestamp_seconds 1.7588088e+09
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"qtmsync_runs_total", "qtmsync_last_run_timestamp_seconds"))
}

func TestDatastoreRecorder(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.Datastore.RecordOperation("db_insert", "success")
	m.Datastore.RecordError("db_insert", "constraint_violation")
	m.Datastore.RecordDuration("db_insert", 0.004)

	count, err := testutil.GatherAndCount(m.Registry(),
		"qtmsync_db_operations_total", "qtmsync_db_operation_errors_total", "qtmsync_db_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	m.Recorder().RecordFile(analysis.StatusSaved, analysis.StageSaved, time.Millisecond)

	path := filepath.Join(t.TempDir(), "textfile", "qtmsync.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `qtmsync_files_total{stage="saved",status="saved"} 1`)
	assert.Contains(t, string(data), "# TYPE qtmsync_file_duration_seconds histogram")
}

func TestNewMetricsUsesPrivateRegistry(t *testing.T) {
	t.Parallel()

	a, err := NewMetrics()
	require.NoError(t, err)
	b, err := NewMetrics()
	require.NoError(t, err, "collectors are not registered globally")
	assert.NotSame(t, a.Registry(), b.Registry())
}
