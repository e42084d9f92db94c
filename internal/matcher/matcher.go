// Package matcher assigns logged events to their nearest capture frame and writes
// the event labels into the capture grid.
package matcher

import (
	"strings"
	"time"

	"github.com/ricki-pierce/integrating4Fears/internal/frames"
	"github.com/ricki-pierce/integrating4Fears/internal/grid"
)

// DefaultTolerance is the drift, in seconds, above which a match is flagged.
const DefaultTolerance = 0.5

// DefaultSeparator joins labels of events sharing a frame.
const DefaultSeparator = " | "

// Event is a qualifying log event with its absolute time.
type Event struct {
	Label string
	Time  time.Time
	// LogRow is the 1-indexed log row, for diagnostics.
	LogRow int
}

// MatchResult is the frame chosen for one event.
type MatchResult struct {
	Event Event
	// Row is the 0-indexed grid row of the chosen frame.
	Row       int
	FrameTime time.Time
	// Diff is the absolute time difference in seconds.
	Diff float64
	// Exceeds is set when Diff is above the tolerance.
	Exceeds bool
}

// Nearest returns the frame closest in time to t. On equal distances the frame
// with the lowest row wins. ok is false for an empty index.
func Nearest(idx *frames.Index, t time.Time) (best frames.Frame, diff time.Duration, ok bool) {
	for _, f := range idx.Frames() {
		d := absDuration(f.Time.Sub(t))
		if !ok || d < diff {
			best, diff, ok = f, d, true
		}
	}
	return best, diff, ok
}

// Match assigns every event to its nearest frame, preserving event order. A nil
// tolerance disables drift flagging. Events are returned unmatched (omitted) only
// when the index is empty.
func Match(events []Event, idx *frames.Index, tolerance *float64) []MatchResult {
	results := make([]MatchResult, 0, len(events))
	for _, ev := range events {
		f, d, ok := Nearest(idx, ev.Time)
		if !ok {
			return nil
		}
		diff := d.Seconds()
		results = append(results, MatchResult{
			Event:     ev,
			Row:       f.Row,
			FrameTime: f.Time,
			Diff:      diff,
			Exceeds:   tolerance != nil && diff > *tolerance,
		})
	}
	return results
}

// Annotate writes each result's label into col of its row. A row receiving several
// labels gets them joined with sep in result order; existing text in the cell is
// kept in front.
func Annotate(g *grid.Grid, col int, results []MatchResult, sep string) {
	for _, r := range results {
		cur := g.Cell(r.Row, col)
		if strings.TrimSpace(cur) != "" {
			g.SetCell(r.Row, col, cur+sep+r.Event.Label)
			continue
		}
		g.SetCell(r.Row, col, r.Event.Label)
	}
}

// Exceeding returns the results flagged as drifting beyond tolerance.
func Exceeding(results []MatchResult) []MatchResult {
	var out []MatchResult
	for _, r := range results {
		if r.Exceeds {
			out = append(out, r)
		}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
