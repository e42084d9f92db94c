package analysis

import (
	"context"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/eventlog"
	"github.com/ricki-pierce/integrating4Fears/internal/layout"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/matcher"
)

// Config drives an Orchestrator. NewFromSettings builds one from conf.Settings.
type Config struct {
	LogPath    string
	CaptureDir string
	OutputDir  string
	Suffix     string
	Extensions []string
	Recursive  bool
	DryRun     bool
	// Tolerance in seconds; nil disables drift warnings.
	Tolerance *float64
	Separator string
	Workers   int
	// Location applies to log timestamps without an offset.
	Location   *time.Location
	Vocabulary *eventlog.Vocabulary
	Detector   *layout.Detector
}

// Recorder receives run measurements.
type Recorder interface {
	RecordFile(status Status, stage Stage, duration time.Duration)
	RecordDrift(seconds float64, exceeded bool)
	RecordParseFailures(kind string, n int)
}

// ReportSink persists finished reports.
type ReportSink interface {
	SaveReport(ctx context.Context, report *Report) error
}

type noopRecorder struct{}

func (noopRecorder) RecordFile(Status, Stage, time.Duration) {}
func (noopRecorder) RecordDrift(float64, bool)               {}
func (noopRecorder) RecordParseFailures(string, int)         {}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger replaces the package logger, mainly for capturing diagnostics in tests.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRecorder sends measurements to r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithReportSink persists every directory report to sink.
func WithReportSink(sink ReportSink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// NewFromSettings maps settings onto a Config and builds an Orchestrator.
func NewFromSettings(settings *conf.Settings, opts ...Option) (*Orchestrator, error) {
	loc, err := settings.Location()
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Context("timezone", settings.Sync.Timezone).
			Build()
	}

	vocab, err := eventlog.NewVocabulary(eventlog.VocabularyConfig{
		AnchorLabel:     settings.Sync.AnchorLabel,
		Milestones:      settings.Sync.Milestones,
		LitPattern:      settings.Sync.Patterns.Lit,
		PressedPattern:  settings.Sync.Patterns.Pressed,
		ReleasedPattern: settings.Sync.Patterns.Released,
		IncludeReleased: settings.Sync.IncludeReleased,
	})
	if err != nil {
		return nil, err
	}

	cfg := Config{
		LogPath:    settings.Input.Log,
		CaptureDir: settings.Input.Captures,
		OutputDir:  settings.Output.Path,
		Suffix:     settings.Output.Suffix,
		Extensions: settings.Input.Extensions,
		Recursive:  settings.Input.Recursive,
		DryRun:     settings.Output.DryRun,
		Tolerance:  settings.DriftTolerance(),
		Separator:  settings.Sync.Separator,
		Workers:    settings.Sync.Workers,
		Location:   loc,
		Vocabulary: vocab,
		Detector: &layout.Detector{
			HeaderScanRows:    settings.Layout.HeaderScanRows,
			FallbackHeaderRow: settings.Layout.FallbackHeaderRow - 1,
			DataOffset:        settings.Layout.DataOffset,
		},
	}
	return New(cfg, opts...)
}

func (c *Config) applyDefaults() {
	if c.Suffix == "" {
		c.Suffix = "_synced"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".xlsx", ".csv"}
	}
	if c.Separator == "" {
		c.Separator = matcher.DefaultSeparator
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Vocabulary == nil {
		c.Vocabulary = eventlog.DefaultVocabulary()
	}
	if c.Detector == nil {
		c.Detector = layout.NewDetector()
	}
}

// validate rejects settings the pipeline cannot run with. It expects defaults
// to be applied first.
func (c *Config) validate() error {
	var problems []string
	if c.Tolerance != nil && (math.IsNaN(*c.Tolerance) || *c.Tolerance < 0) {
		problems = append(problems, "tolerance must be a non-negative number of seconds")
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		problems = append(problems, "output suffix must not contain path separators")
	}
	if c.Detector.HeaderScanRows < 1 {
		problems = append(problems, "header scan rows must be at least 1")
	}
	if c.Detector.FallbackHeaderRow < 0 {
		problems = append(problems, "fallback header row must not be negative")
	}
	if c.Detector.DataOffset < 1 {
		problems = append(problems, "data offset must be at least 1")
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.Newf("invalid analysis config: %s", strings.Join(problems, "; ")).
		Component("analysis").
		Category(errors.CategoryValidation).
		Context("problems", len(problems)).
		Build()
}

// acceptsExtension reports whether name has one of the configured extensions.
func (c *Config) acceptsExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(c.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
