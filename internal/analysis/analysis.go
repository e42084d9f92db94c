package analysis

import (
	"os"
	"path/filepath"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/eventlog"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/timestamp"
)

// Orchestrator owns the loaded event log and runs capture files through the
// synchronization pipeline. Files share only read-only state, so they may be
// processed concurrently.
type Orchestrator struct {
	cfg      Config
	log      logger.Logger
	recorder Recorder
	sink     ReportSink
	parser   *timestamp.Parser
	events   *eventlog.Store
}

// New fills unset fields of cfg with defaults, validates it and returns an
// Orchestrator. The event log is read lazily by LoadLog, DirectoryAnalysis or
// FileAnalysis.
func New(cfg Config, opts ...Option) (*Orchestrator, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:      cfg,
		log:      GetLogger(),
		recorder: noopRecorder{},
		parser:   timestamp.NewParser(cfg.Location),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// LoadLog reads the behavioral log. Failure is fatal for a run.
func (o *Orchestrator) LoadLog() error {
	if o.events != nil {
		return nil
	}
	if o.cfg.LogPath == "" {
		return errors.Newf("no event log configured").
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}

	store, err := eventlog.Load(o.cfg.LogPath, o.parser)
	if err != nil {
		return err
	}
	o.events = store
	o.log.Info("event log ready",
		logger.String("path", o.cfg.LogPath),
		logger.Int("records", store.Len()),
		logger.Int("trials", len(store.Keys())))
	return nil
}

// UseEvents installs an already loaded store in place of LoadLog.
func (o *Orchestrator) UseEvents(store *eventlog.Store) {
	o.events = store
}

// prepareOutput creates the output directory. It refuses the capture directory
// itself so inputs are never overwritten.
func (o *Orchestrator) prepareOutput() error {
	if o.cfg.DryRun {
		return nil
	}
	if o.cfg.OutputDir == "" {
		return errors.Newf("no output directory configured").
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if o.cfg.CaptureDir != "" {
		out, errOut := filepath.Abs(o.cfg.OutputDir)
		in, errIn := filepath.Abs(o.cfg.CaptureDir)
		if errOut == nil && errIn == nil && out == in {
			return errors.Newf("output directory must differ from the capture directory").
				Component("analysis").
				Category(errors.CategoryConfiguration).
				Context("path", out).
				Build()
		}
	}

	if err := os.MkdirAll(o.cfg.OutputDir, 0o755); err != nil {
		return errors.FileError(err, o.cfg.OutputDir)
	}
	return nil
}
