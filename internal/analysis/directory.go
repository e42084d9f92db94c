package analysis

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
)

// DirectoryAnalysis synchronizes every capture file in the capture directory and
// returns the run report. Per-file problems are recorded in the report; only a
// missing capture directory, an unusable event log or output directory is
// returned as an error, before any output is written. Cancelling ctx stops the run
// before the next file starts; the partial report is returned with
// ErrAnalysisCanceled.
func (o *Orchestrator) DirectoryAnalysis(ctx context.Context) (*Report, error) {
	info, err := os.Stat(o.cfg.CaptureDir)
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("capture_dir", o.cfg.CaptureDir).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.Newf("capture path %q is not a directory", o.cfg.CaptureDir).
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}
	if err := o.LoadLog(); err != nil {
		return nil, err
	}
	if err := o.prepareOutput(); err != nil {
		return nil, err
	}

	files, err := o.discover()
	if err != nil {
		return nil, err
	}

	report := newReport(&o.cfg)
	runLog := o.log.WithContext(logger.WithTraceID(ctx, report.RunID.String()))
	runLog.Info("starting synchronization run",
		logger.String("run_id", report.RunID.String()),
		logger.String("captures", o.cfg.CaptureDir),
		logger.Int("files", len(files)),
		logger.Int("workers", o.cfg.Workers),
		logger.Bool("dry_run", o.cfg.DryRun))

	results := make([]FileResult, len(files))
	started := make([]bool, len(files))

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.Workers)
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			results[i] = o.processFile(runLog, path, o.outputPath(path))
			return nil
		})
	}
	_ = g.Wait()

	for i := range files {
		if started[i] {
			report.Files = append(report.Files, results[i])
		}
	}
	report.FinishedAt = time.Now()
	report.Canceled = ctx.Err() != nil

	o.logSummary(runLog, report, len(files))

	if o.sink != nil {
		if err := o.sink.SaveReport(context.WithoutCancel(ctx), report); err != nil {
			runLog.Error("failed to persist run report",
				logger.String("run_id", report.RunID.String()),
				logger.Error(err))
		}
	}

	if report.Canceled {
		return report, errors.New(ErrAnalysisCanceled).
			Component("analysis").
			Category(errors.CategoryCancellation).
			Context("processed", len(report.Files)).
			Context("discovered", len(files)).
			Build()
	}
	return report, nil
}

func (o *Orchestrator) logSummary(log logger.Logger, report *Report, discovered int) {
	counts := report.Counts()
	log.Info("synchronization run finished",
		logger.String("run_id", report.RunID.String()),
		logger.Int("discovered", discovered),
		logger.Int("saved", counts[StatusSaved]+counts[StatusDryRun]),
		logger.Int("skipped", counts[StatusSkipped]),
		logger.Int("failed", counts[StatusFailed]),
		logger.Int("drift_warnings", report.DriftWarnings()),
		logger.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
		logger.Bool("canceled", report.Canceled))
}

// discover lists candidate capture files in lexical order.
func (o *Orchestrator) discover() ([]string, error) {
	outAbs, _ := filepath.Abs(o.cfg.OutputDir)

	var files []string
	err := filepath.WalkDir(o.cfg.CaptureDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == o.cfg.CaptureDir {
				return err
			}
			o.log.Warn("cannot access path, skipping",
				logger.String("path", path),
				logger.Error(err))
			return nil
		}

		if d.IsDir() {
			if path == o.cfg.CaptureDir {
				return nil
			}
			if !o.cfg.Recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(path); err == nil && abs == outAbs {
				return filepath.SkipDir
			}
			return nil
		}

		if o.excluded(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("capture_dir", o.cfg.CaptureDir).
			Build()
	}
	return files, nil
}

// excluded filters out unsupported extensions and earlier outputs, plus the lock
// and temporary files ("~$x.xlsx", ".~lock.x.xlsx#") left next to open workbooks.
func (o *Orchestrator) excluded(name string) bool {
	if !o.cfg.acceptsExtension(name) {
		return true
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "~$"),
		strings.HasPrefix(name, "."),
		strings.HasSuffix(lower, ".tmp"):
		return true
	}
	stem := strings.TrimSuffix(lower, filepath.Ext(lower))
	return strings.HasSuffix(stem, strings.ToLower(o.cfg.Suffix))
}
