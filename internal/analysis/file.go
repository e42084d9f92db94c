package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/eventlog"
	"github.com/ricki-pierce/integrating4Fears/internal/frames"
	"github.com/ricki-pierce/integrating4Fears/internal/grid"
	"github.com/ricki-pierce/integrating4Fears/internal/identity"
	"github.com/ricki-pierce/integrating4Fears/internal/layout"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/matcher"
	"github.com/ricki-pierce/integrating4Fears/internal/timestamp"
)

// Annotation column positions and headers in the output grid.
const (
	EventColumn      = 0
	SyncedTimeColumn = 3
	EventHeader      = "Event"
	SyncedTimeHeader = "Global Time Synced"
)

// FileAnalysis synchronizes a single capture file. A skip is reported in the
// result, not as an error; the error is reserved for fatal conditions (unreadable
// log or output directory).
func (o *Orchestrator) FileAnalysis(ctx context.Context, path string) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	if err := o.LoadLog(); err != nil {
		return FileResult{}, err
	}
	if err := o.prepareOutput(); err != nil {
		return FileResult{}, err
	}
	return o.processFile(o.log.WithContext(ctx), path, o.outputPath(path)), nil
}

// outputPath places the annotated copy under the output directory, mirroring the
// capture's path below the capture directory.
func (o *Orchestrator) outputPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + o.cfg.Suffix + ext

	dir := o.cfg.OutputDir
	if o.cfg.CaptureDir != "" {
		if rel, err := filepath.Rel(o.cfg.CaptureDir, filepath.Dir(path)); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			dir = filepath.Join(dir, rel)
		}
	}
	return filepath.Join(dir, name)
}

// processFile runs one capture through the pipeline and never returns an error:
// every failure becomes a skip or failed status on the result.
func (o *Orchestrator) processFile(base logger.Logger, path, outPath string) FileResult {
	start := time.Now()
	res := FileResult{Path: path, Stage: StageDiscovered, HeaderRow: -1, TimeColumn: -1}
	log := base.With(logger.String("file", filepath.Base(path)))

	err := o.runPipeline(path, outPath, &res, log)
	res.Duration = time.Since(start)

	var se *SkipError
	switch {
	case err == nil:
	case errors.As(err, &se):
		res.Status = StatusSkipped
		res.Stage = se.Stage
		res.Reason = se.Reason
		res.Err = se
		log.Warn("skipping capture file",
			logger.String("stage", string(se.Stage)),
			logger.String("reason", se.Reason),
			logger.Error(se.Err))
	default:
		res.Status = StatusFailed
		res.Reason = "could not write output"
		res.Err = err
		log.Error("failed to save synced file",
			logger.String("stage", string(StageSaved)),
			logger.String("reason", res.Reason),
			logger.Error(err))
	}

	o.recorder.RecordFile(res.Status, res.Stage, res.Duration)
	return res
}

func (o *Orchestrator) runPipeline(path, outPath string, res *FileResult, log logger.Logger) error {
	// discovered → identity-parsed
	id, err := identity.ParseFilename(path)
	if err != nil {
		return skip(StageIdentityParsed, "file name does not match <task>_Trial<N>_<subject>", err)
	}
	res.Identity = id
	res.Stage = StageIdentityParsed

	// identity-parsed → filtered
	trial := o.events.Select(id.Key())
	if trial.Empty() {
		return skip(StageFiltered, "no log events for "+id.String(), nil)
	}
	if spellings := trial.Spellings(); len(spellings) > 1 {
		log.Warn("trial key matches differently spelled log rows",
			logger.String("trial", id.Key().String()),
			logger.Any("spellings", spellings))
	}
	res.Stage = StageFiltered

	// filtered → layout-detected
	g, err := grid.Load(path)
	if err != nil {
		return skip(StageLayoutDetected, "capture file could not be read", err)
	}
	headerRow, timeCol, detected := o.annotateLayout(g)
	res.HeaderRow, res.HeaderDetected = headerRow, detected
	if !detected {
		log.Debug("no frame/time header found, using fallback header row",
			logger.Int("header_row", headerRow+1))
	}
	if timeCol < 0 {
		return skip(StageLayoutDetected, "no time column in header row", layoutError(path, headerRow))
	}
	res.TimeColumn = timeCol
	res.Stage = StageLayoutDetected

	// layout-detected → frame-indexed
	anchor, err := o.anchorTime(trial, log)
	if err != nil {
		return skip(StageFrameIndexed, "trial has no usable start anchor", err)
	}
	dataStart := o.cfg.Detector.DataStartRow(headerRow)
	built := frames.Reconstruct(g, anchor, timeCol, dataStart, SyncedTimeColumn)
	res.Frames = built.Index.Len()
	res.UnparsableRows = len(built.Unparsable)
	if n := len(built.Unparsable); n > 0 {
		o.recorder.RecordParseFailures("frame", n)
		log.Warn("frame time cells could not be parsed",
			logger.Int("rows", n),
			logger.Int("first_row", built.Unparsable[0]+1))
	}
	if built.Index.Empty() {
		return skip(StageFrameIndexed, "no parsable frame times", framesError(path, dataStart))
	}
	res.Stage = StageFrameIndexed

	// frame-indexed → matched
	events := o.qualifyingEvents(trial, anchor, log)
	if len(events) == 0 {
		log.Warn("no matching event types in log for this trial",
			logger.String("stage", string(StageMatched)))
	}
	res.Matches = matcher.Match(events, built.Index, o.cfg.Tolerance)
	for _, m := range res.Matches {
		o.recorder.RecordDrift(m.Diff, m.Exceeds)
		if !m.Exceeds {
			continue
		}
		res.DriftWarnings++
		log.Warn("large match difference",
			logger.String("event", m.Event.Label),
			logger.Float64("diff_seconds", m.Diff),
			logger.Int("row", m.Row+1),
			logger.Int("log_row", m.Event.LogRow),
			logger.String("category", string(errors.CategoryDrift)))
	}
	res.Stage = StageMatched

	// matched → annotated
	matcher.Annotate(g, EventColumn, res.Matches, o.cfg.Separator)
	res.Stage = StageAnnotated

	// annotated → saved
	if o.cfg.DryRun {
		res.Status = StatusDryRun
		log.Info("dry run, synced file not written",
			logger.Int("frames", res.Frames),
			logger.Int("matches", len(res.Matches)))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.FileError(err, outPath)
	}
	if err := grid.Save(g, outPath); err != nil {
		return err
	}
	res.Output = outPath
	res.Status = StatusSaved
	res.Stage = StageSaved
	log.Info("saved synced file",
		logger.String("output", outPath),
		logger.Int("frames", res.Frames),
		logger.Int("matches", len(res.Matches)),
		logger.Int("drift_warnings", res.DriftWarnings))
	return nil
}

// annotateLayout inserts the event and synced-time columns, labels them on the
// header row and locates the frame time column among the original columns.
func (o *Orchestrator) annotateLayout(g *grid.Grid) (headerRow, timeCol int, detected bool) {
	headerRow, detected = o.cfg.Detector.FindHeaderRow(g)

	g.InsertColumn(EventColumn)
	g.InsertColumn(SyncedTimeColumn)
	g.SetCell(headerRow, EventColumn, EventHeader)
	g.SetCell(headerRow, SyncedTimeColumn, SyncedTimeHeader)

	timeCol = layout.FindColumn(g, headerRow, "time", EventColumn, SyncedTimeColumn)
	return headerRow, timeCol, detected
}

// anchorTime returns the absolute time of the trial's first anchor event.
func (o *Orchestrator) anchorTime(trial eventlog.Trial, log logger.Logger) (time.Time, error) {
	anchors := trial.Anchors(o.cfg.Vocabulary)
	if len(anchors) == 0 {
		return time.Time{}, anchorError(o.cfg.Vocabulary.AnchorLabel(), "missing", "")
	}
	if len(anchors) > 1 {
		log.Warn("trial has several start anchors, using the first",
			logger.Int("anchors", len(anchors)),
			logger.Int("log_row", anchors[0].Row))
	}

	a := anchors[0]
	if !a.HasTimestamp() {
		return time.Time{}, anchorError(o.cfg.Vocabulary.AnchorLabel(), "unparsable timestamp", a.RawTimestamp)
	}
	return a.Timestamp.Time, nil
}

// qualifyingEvents returns the trial's matchable events with absolute times. Times
// of day are placed on the anchor's day; when the anchor itself is a time of day
// dated events are reduced to their clock time on that same day.
func (o *Orchestrator) qualifyingEvents(trial eventlog.Trial, anchor time.Time, log logger.Logger) []matcher.Event {
	anchorIsClock := false
	if as := trial.Anchors(o.cfg.Vocabulary); len(as) > 0 {
		anchorIsClock = as[0].Timestamp.Kind == timestamp.KindTimeOfDay
	}

	var events []matcher.Event
	failed := 0
	for _, c := range trial.Qualifying(o.cfg.Vocabulary) {
		rec := c.Record
		if !rec.HasTimestamp() {
			failed++
			log.Warn("could not parse event timestamp",
				logger.String("event", rec.Label),
				logger.String("timestamp", rec.RawTimestamp),
				logger.Int("log_row", rec.Row))
			continue
		}

		inst := rec.Timestamp
		if anchorIsClock {
			inst.Kind = timestamp.KindTimeOfDay
		}
		events = append(events, matcher.Event{
			Label:  c.Label.Text,
			Time:   inst.OnDay(anchor),
			LogRow: rec.Row,
		})
	}
	if failed > 0 {
		o.recorder.RecordParseFailures("event", failed)
	}
	return events
}

func anchorError(label, reason, raw string) error {
	return errors.Newf("start anchor %q %s", label, reason).
		Component("analysis").
		Category(errors.CategoryAnchor).
		Context("anchor_label", label).
		Context("timestamp", raw).
		Build()
}

func layoutError(path string, headerRow int) error {
	return errors.Newf("no column containing %q on header row %d", "time", headerRow+1).
		Component("analysis").
		Category(errors.CategoryLayout).
		FileContext(path).
		Build()
}

func framesError(path string, dataStart int) error {
	return errors.Newf("no parsable frame time from row %d on", dataStart+1).
		Component("analysis").
		Category(errors.CategoryFrames).
		FileContext(path).
		Build()
}
