package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/identity"
	"github.com/ricki-pierce/integrating4Fears/internal/matcher"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "qtmsync.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(started time.Time) *analysis.Report {
	tol := 0.5
	anchor := time.Date(2025, 9, 25, 14, 0, 0, 0, time.UTC)
	return &analysis.Report{
		RunID:      uuid.New(),
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		LogPath:    "/data/trial_log.xlsx",
		CaptureDir: "/data/qtm",
		OutputDir:  "/data/synced",
		Tolerance:  &tol,
		Files: []analysis.FileResult{
			{
				Path:       "/data/qtm/Reach_Trial3_S002.xlsx",
				Output:     "/data/synced/Reach_Trial3_S002_synced.xlsx",
				Identity:   identity.Identity{Task: "Reach", Trial: 3, Subject: "S002"},
				Status:     analysis.StatusSaved,
				Stage:      analysis.StageSaved,
				HeaderRow:  4,
				TimeColumn: 2,
				Frames:     3,
				Matches: []matcher.MatchResult{
					{Event: matcher.Event{Label: "QTM Start Command Sent", Time: anchor, LogRow: 2}, Row: 7, FrameTime: anchor},
					{
						Event:     matcher.Event{Label: "#1 - pressed", Time: anchor.Add(2200 * time.Millisecond), LogRow: 5},
						Row:       9,
						FrameTime: anchor.Add(time.Second),
						Diff:      1.2,
						Exceeds:   true,
					},
				},
				DriftWarnings: 1,
				Duration:      40 * time.Millisecond,
			},
			{
				Path:       "/data/qtm/calibration.xlsx",
				Status:     analysis.StatusSkipped,
				Stage:      analysis.StageIdentityParsed,
				Reason:     "file name does not match",
				Err:        errors.NewStd("no trial marker"),
				HeaderRow:  -1,
				TimeColumn: -1,
			},
		},
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	report := sampleReport(time.Now().UTC())
	require.NoError(t, s.SaveReport(t.Context(), report))

	run, err := s.Run(t.Context(), report.RunID.String())
	require.NoError(t, err)

	assert.Equal(t, 1, run.Saved)
	assert.Equal(t, 1, run.Skipped)
	assert.Zero(t, run.Failed)
	assert.Equal(t, 1, run.DriftWarnings)
	require.NotNil(t, run.Tolerance)
	assert.InDelta(t, 0.5, *run.Tolerance, 1e-9)
	require.Len(t, run.Files, 2)

	saved := run.Files[0]
	assert.Equal(t, "S002", saved.Subject)
	assert.Equal(t, 3, saved.Trial)
	assert.Equal(t, 5, saved.HeaderRow, "stored 1-indexed")
	assert.Equal(t, 3, saved.TimeColumn)
	assert.Equal(t, 2, saved.MatchCount)
	require.Len(t, saved.Matches, 2)
	assert.Equal(t, 10, saved.Matches[1].Row)
	assert.True(t, saved.Matches[1].Exceeds)
	assert.InDelta(t, 1.2, saved.Matches[1].DiffSeconds, 1e-9)

	skipped := run.Files[1]
	assert.Equal(t, "skipped", skipped.Status)
	assert.Equal(t, "identity-parsed", skipped.Stage)
	assert.Equal(t, "no trial marker", skipped.Error)
	assert.Zero(t, skipped.HeaderRow)
}

func TestRunsNewestFirst(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	base := time.Date(2025, 9, 25, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		r := sampleReport(base.Add(time.Duration(i) * time.Hour))
		ids = append(ids, r.RunID.String())
		require.NoError(t, s.SaveReport(t.Context(), r))
	}

	runs, err := s.Runs(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Len(t, runs[0].Files, 2)
	assert.Empty(t, runs[0].Files[0].Matches, "matches are only loaded by Run")

	all, err := s.Runs(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunNotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	_, err := s.Run(t.Context(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	err = s.DeleteRun(t.Context(), uuid.NewString())
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteRunCascades(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	report := sampleReport(time.Now().UTC())
	require.NoError(t, s.SaveReport(t.Context(), report))
	require.NoError(t, s.DeleteRun(t.Context(), report.RunID.String()))

	var outcomes, matches int64
	require.NoError(t, s.db.Model(&FileOutcome{}).Count(&outcomes).Error)
	require.NoError(t, s.db.Model(&EventMatch{}).Count(&matches).Error)
	assert.Zero(t, outcomes)
	assert.Zero(t, matches)
}

func TestSaveNilReport(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	err := s.SaveReport(t.Context(), nil)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open("", false)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestParseSQLOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{"SELECT * FROM `sync_runs` WHERE id = ?", "select", "sync_runs"},
		{`INSERT INTO "file_outcomes" (run_id) VALUES (?)`, "insert", "file_outcomes"},
		{"UPDATE event_matches SET exceeds = 1", "update", "event_matches"},
		{"DELETE FROM `sync_runs` WHERE id = ?", "delete", "sync_runs"},
		{"CREATE INDEX `idx_sync_runs_started_at` ON `sync_runs`(`started_at`)", "create", "idx_sync_runs_started_at"},
		{"PRAGMA foreign_keys", sqlUnknown, sqlUnknown},
	}
	for _, tt := range tests {
		op, table := parseSQLOperation(tt.sql)
		assert.Equal(t, tt.operation, op, tt.sql)
		assert.Equal(t, tt.table, table, tt.sql)
	}
}
