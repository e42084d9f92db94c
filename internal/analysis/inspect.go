package analysis

import (
	"time"

	"github.com/ricki-pierce/integrating4Fears/internal/frames"
	"github.com/ricki-pierce/integrating4Fears/internal/grid"
	"github.com/ricki-pierce/integrating4Fears/internal/identity"
	"github.com/ricki-pierce/integrating4Fears/internal/layout"
)

// Inspection describes how a capture file would be read, without modifying it.
type Inspection struct {
	Path           string
	Identity       identity.Identity
	IdentityErr    error
	Rows           int
	HeaderRow      int // 0-indexed
	HeaderDetected bool
	TimeColumn     int // 0-indexed in the original file, -1 when missing
	TimeHeader     string
	DataStartRow   int // 0-indexed
	Frames         int
	UnparsableRows int
	// LogEvents is the number of log records for the trial, -1 when no log is loaded.
	LogEvents int
	Anchors   int
}

// Inspect reports the identity and detected layout of a capture file. Only an
// unreadable capture is an error.
func (o *Orchestrator) Inspect(path string) (Inspection, error) {
	ins := Inspection{Path: path, LogEvents: -1, TimeColumn: -1}
	ins.Identity, ins.IdentityErr = identity.ParseFilename(path)

	g, err := grid.Load(path)
	if err != nil {
		return ins, err
	}
	ins.Rows = g.Len()
	ins.HeaderRow, ins.HeaderDetected = o.cfg.Detector.FindHeaderRow(g)
	ins.DataStartRow = o.cfg.Detector.DataStartRow(ins.HeaderRow)

	ins.TimeColumn = layout.FindColumn(g, ins.HeaderRow, "time")
	if ins.TimeColumn >= 0 {
		ins.TimeHeader = g.Cell(ins.HeaderRow, ins.TimeColumn)
		// A zero anchor is enough to count parsable offsets.
		res := frames.Reconstruct(g, time.Time{}, ins.TimeColumn, ins.DataStartRow, -1)
		ins.Frames = res.Index.Len()
		ins.UnparsableRows = len(res.Unparsable)
	}

	if o.events != nil && ins.IdentityErr == nil {
		trial := o.events.Select(ins.Identity.Key())
		ins.LogEvents = len(trial.Events)
		ins.Anchors = len(trial.Anchors(o.cfg.Vocabulary))
	}
	return ins, nil
}
