// Package frames rebuilds absolute wall-clock times for capture frames from their
// relative offsets and a trial's anchor time.
package frames

import (
	"strings"
	"time"

	"github.com/ricki-pierce/integrating4Fears/internal/grid"
	"github.com/ricki-pierce/integrating4Fears/internal/timestamp"
)

// Frame is one data row with a successfully reconstructed absolute time.
type Frame struct {
	// Row is the 0-indexed grid row.
	Row  int
	Time time.Time
}

// Index maps capture rows to absolute times in ascending row order. Every entry
// holds a parsed time; rows with unparsable offsets are absent.
type Index struct {
	frames []Frame
}

// NewIndex builds an index from frames already in ascending row order.
func NewIndex(frames []Frame) *Index {
	return &Index{frames: frames}
}

// Len returns the number of indexed frames.
func (i *Index) Len() int {
	return len(i.frames)
}

// Empty reports whether no frame could be indexed.
func (i *Index) Empty() bool {
	return len(i.frames) == 0
}

// Frames returns the indexed frames in ascending row order. The slice must not be
// modified.
func (i *Index) Frames() []Frame {
	return i.frames
}

// Lookup returns the absolute time of row.
func (i *Index) Lookup(row int) (time.Time, bool) {
	for _, f := range i.frames {
		if f.Row == row {
			return f.Time, true
		}
		if f.Row > row {
			break
		}
	}
	return time.Time{}, false
}

// Result is the outcome of a reconstruction pass.
type Result struct {
	Index *Index
	// Unparsable lists the 0-indexed rows whose non-blank offset cell failed to parse.
	Unparsable []int
	// Blank counts data rows with an empty offset cell.
	Blank int
}

// Reconstruct computes anchor + offset for every data row from dataStart on, reading
// the offset from timeCol. When outCol is non-negative the absolute time is written
// to that column as HH:MM:SS.mmm. Rows whose offset is blank or unparsable are left
// untouched and excluded from the index.
func Reconstruct(g *grid.Grid, anchor time.Time, timeCol, dataStart, outCol int) Result {
	var res Result
	frames := make([]Frame, 0, max(g.Len()-dataStart, 0))

	for r := max(dataStart, 0); r < g.Len(); r++ {
		cell := g.Cell(r, timeCol)
		if strings.TrimSpace(cell) == "" {
			res.Blank++
			continue
		}
		secs, err := timestamp.ParseOffset(cell)
		if err != nil {
			res.Unparsable = append(res.Unparsable, r)
			continue
		}

		abs := anchor.Add(timestamp.SecondsToDuration(secs))
		if outCol >= 0 {
			g.SetCell(r, outCol, timestamp.FormatClock(abs))
		}
		frames = append(frames, Frame{Row: r, Time: abs})
	}

	res.Index = NewIndex(frames)
	return res
}
