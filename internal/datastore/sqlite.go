package datastore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/observability/metrics"
)

// slowQueryThreshold marks queries worth a warning.
const slowQueryThreshold = 500 * time.Millisecond

// Store persists run reports to an SQLite database. It implements
// analysis.ReportSink.
type Store struct {
	db   *gorm.DB
	path string
}

var _ analysis.ReportSink = (*Store)(nil)

// Option customizes Open.
type Option func(*openOptions)

type openOptions struct {
	metrics metrics.Recorder
}

// WithMetrics records query counts and durations to rec.
func WithMetrics(rec metrics.Recorder) Option {
	return func(o *openOptions) {
		o.metrics = rec
	}
}

// Open opens or creates the database at path and migrates the schema. With debug
// set every query is logged at debug level.
func Open(path string, debug bool, opts ...Option) (*Store, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	if path == "" {
		return nil, errors.Newf("sqlite path is empty").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.FileError(err, dir)
		}
	}

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		Logger: NewGormLogger(GetLogger(), o.metrics, slowQueryThreshold, level),
	})
	if err != nil {
		return nil, dbError(err, "open", "path", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open", "path", path)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&SyncRun{}, &FileOutcome{}, &EventMatch{}); err != nil {
		_ = sqlDB.Close()
		return nil, dbError(err, "auto_migrate", "path", path)
	}

	GetLogger().Debug("run history database ready", logger.String("path", path))
	return &Store{db: db, path: path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "close", "path", s.path)
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", "path", s.path)
	}
	return nil
}

// SaveReport stores a run with its file outcomes and matches in one transaction.
func (s *Store) SaveReport(ctx context.Context, report *analysis.Report) error {
	if report == nil {
		return errors.Newf("nil report").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	run := runFromReport(report)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&run).Error
	})
	if err != nil {
		return dbError(err, "save_report", "run_id", run.ID)
	}

	GetLogger().Info("run report stored",
		logger.String("run_id", run.ID),
		logger.Int("files", len(run.Files)))
	return nil
}

// Runs returns the most recent runs with their file outcomes, newest first. A
// limit of zero or less returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]SyncRun, error) {
	q := s.db.WithContext(ctx).Preload("Files").Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var runs []SyncRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, dbError(err, "list_runs", "limit", limit)
	}
	return runs, nil
}

// Run returns one run including every match.
func (s *Store) Run(ctx context.Context, id string) (*SyncRun, error) {
	var run SyncRun
	err := s.db.WithContext(ctx).
		Preload("Files.Matches").
		First(&run, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errors.Newf("run %s not found", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("run_id", id).
			Build()
	case err != nil:
		return nil, dbError(err, "get_run", "run_id", id)
	}
	return &run, nil
}

// DeleteRun removes a run and, through the cascade, its outcomes and matches.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&SyncRun{}, "id = ?", id)
	if res.Error != nil {
		return dbError(res.Error, "delete_run", "run_id", id)
	}
	if res.RowsAffected == 0 {
		return errors.Newf("run %s not found", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("run_id", id).
			Build()
	}
	return nil
}

func runFromReport(r *analysis.Report) SyncRun {
	counts := r.Counts()
	run := SyncRun{
		ID:            r.RunID.String(),
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		LogPath:       r.LogPath,
		CaptureDir:    r.CaptureDir,
		OutputDir:     r.OutputDir,
		Tolerance:     r.Tolerance,
		DryRun:        r.DryRun,
		Canceled:      r.Canceled,
		Saved:         counts[analysis.StatusSaved] + counts[analysis.StatusDryRun],
		Skipped:       counts[analysis.StatusSkipped],
		Failed:        counts[analysis.StatusFailed],
		DriftWarnings: r.DriftWarnings(),
		Files:         make([]FileOutcome, 0, len(r.Files)),
	}

	for i := range r.Files {
		run.Files = append(run.Files, outcomeFromResult(&r.Files[i]))
	}
	return run
}

func outcomeFromResult(f *analysis.FileResult) FileOutcome {
	out := FileOutcome{
		Path:           f.Path,
		Output:         f.Output,
		Subject:        f.Identity.Subject,
		Task:           f.Identity.Task,
		Trial:          f.Identity.Trial,
		Status:         string(f.Status),
		Stage:          string(f.Stage),
		Reason:         f.Reason,
		Frames:         f.Frames,
		UnparsableRows: f.UnparsableRows,
		MatchCount:     len(f.Matches),
		DriftWarnings:  f.DriftWarnings,
		DurationMs:     f.Duration.Milliseconds(),
		HeaderRow:      f.HeaderRow + 1,
		TimeColumn:     f.TimeColumn + 1,
	}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}

	for _, m := range f.Matches {
		out.Matches = append(out.Matches, EventMatch{
			Label:       m.Event.Label,
			LogRow:      m.Event.LogRow,
			EventTime:   m.Event.Time,
			Row:         m.Row + 1,
			FrameTime:   m.FrameTime,
			DiffSeconds: m.Diff,
			Exceeds:     m.Exceeds,
		})
	}
	return out
}
