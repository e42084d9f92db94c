package datastore

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/observability/metrics"
)

type recordingMetrics struct {
	mu         sync.Mutex
	operations map[string]int
	errors     map[string]int
	durations  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{operations: map[string]int{}, errors: map[string]int{}}
}

func (r *recordingMetrics) RecordOperation(operation, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations[operation+"/"+status]++
}

func (r *recordingMetrics) RecordDuration(string, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations++
}

func (r *recordingMetrics) RecordError(operation, errorType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[operation+"/"+errorType]++
}

func TestOpenRecordsQueryMetrics(t *testing.T) {
	t.Parallel()

	rec := newRecordingMetrics()
	s, err := Open(filepath.Join(t.TempDir(), "qtmsync.db"), false, WithMetrics(rec))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SaveReport(t.Context(), sampleReport(time.Now().UTC())))
	_, err = s.Run(t.Context(), "missing")
	require.Error(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Positive(t, rec.operations[metrics.OpDbInsert+"/"+metrics.StatusSuccess])
	assert.Positive(t, rec.operations[metrics.OpDbSchema+"/"+metrics.StatusSuccess])
	assert.Positive(t, rec.operations[metrics.OpDbQuery+"/"+metrics.StatusSuccess], "record not found is not a failure")
	assert.Empty(t, rec.errors)
	assert.Positive(t, rec.durations)
}

func TestGormLoggerTrace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := newRecordingMetrics()
	l := NewGormLogger(logger.NewSlogLogger(&buf, logger.LogLevelDebug, time.UTC), rec, 10*time.Millisecond, gormlogger.Info)

	sql := func(s string) func() (string, int64) {
		return func() (string, int64) { return s, 1 }
	}
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sql("INSERT INTO `sync_runs` (`id`) VALUES (?)"), nil)
	l.Trace(ctx, time.Now(), sql("SELECT * FROM `sync_runs`"), gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), sql("INSERT INTO `file_outcomes` (`run_id`) VALUES (?)"), errors.NewStd("FOREIGN KEY constraint failed"))
	l.Trace(ctx, time.Now().Add(-time.Second), sql("SELECT count(*) FROM `event_matches`"), nil)

	out := buf.String()
	assert.Contains(t, out, `"msg":"query executed"`)
	assert.Contains(t, out, `"msg":"database query failed"`)
	assert.Contains(t, out, `"msg":"slow query detected"`)

	assert.Equal(t, 1, rec.operations[metrics.OpDbInsert+"/"+metrics.StatusSuccess])
	assert.Equal(t, 1, rec.operations[metrics.OpDbInsert+"/"+metrics.StatusError])
	assert.Equal(t, 2, rec.operations[metrics.OpDbQuery+"/"+metrics.StatusSuccess])
	assert.Equal(t, 1, rec.errors[metrics.OpDbInsert+"/foreign_key_violation"])
	assert.Equal(t, 4, rec.durations)
}

func TestGormLoggerSilentStillRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := newRecordingMetrics()
	l := NewGormLogger(logger.NewSlogLogger(&buf, logger.LogLevelDebug, time.UTC), rec, 0, gormlogger.Info).
		LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "DELETE FROM `sync_runs`", 0 }, nil)
	assert.Empty(t, buf.String())
	assert.Equal(t, 1, rec.operations[metrics.OpDbDelete+"/"+metrics.StatusSuccess])
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"UNIQUE constraint failed: sync_runs.id": "constraint_violation",
		"FOREIGN KEY constraint failed":          "foreign_key_violation",
		"NOT NULL constraint failed: x.run_id":   "null_violation",
		"database is locked":                     "database_locked",
		"no such table: sync_runs":               "schema",
		"disk I/O error":                         "other",
	}
	for msg, want := range tests {
		assert.Equal(t, want, categorizeError(errors.NewStd(msg)), msg)
	}
}
