// Package layout locates the header row and named columns inside loosely
// structured capture exports.
package layout

import (
	"slices"
	"strings"

	"github.com/ricki-pierce/integrating4Fears/internal/grid"
)

// Defaults matching the motion-capture exporter's known structure.
const (
	DefaultHeaderScanRows = 12
	// DefaultFallbackHeaderRow is 0-indexed (spreadsheet row 4).
	DefaultFallbackHeaderRow = 3
	DefaultDataOffset        = 3
)

// Detector holds the heuristics' tunables. The zero value is not usable; use
// NewDetector or fill every field.
type Detector struct {
	HeaderScanRows    int
	FallbackHeaderRow int
	DataOffset        int
}

// NewDetector returns a detector with the default heuristics.
func NewDetector() *Detector {
	return &Detector{
		HeaderScanRows:    DefaultHeaderScanRows,
		FallbackHeaderRow: DefaultFallbackHeaderRow,
		DataOffset:        DefaultDataOffset,
	}
}

// FindHeaderRow returns the first of the leading HeaderScanRows rows whose joined,
// lowercased cell text contains both "frame" and "time". When no row qualifies it
// returns FallbackHeaderRow and detected=false.
func (d *Detector) FindHeaderRow(g *grid.Grid) (row int, detected bool) {
	limit := min(d.HeaderScanRows, g.Len())
	for r := range limit {
		text := strings.ToLower(strings.Join(g.Row(r), " "))
		if strings.Contains(text, "frame") && strings.Contains(text, "time") {
			return r, true
		}
	}
	return d.FallbackHeaderRow, false
}

// DataStartRow is the first data row below a header row.
func (d *Detector) DataStartRow(headerRow int) int {
	return headerRow + d.DataOffset
}

// FindColumn returns the first column in headerRow whose text contains keyword
// (case-insensitive), ignoring the columns listed in skip. It returns -1 when no
// column matches.
func FindColumn(g *grid.Grid, headerRow int, keyword string, skip ...int) int {
	kw := strings.ToLower(keyword)
	for c, v := range g.Row(headerRow) {
		if v == "" || slices.Contains(skip, c) {
			continue
		}
		if strings.Contains(strings.ToLower(v), kw) {
			return c
		}
	}
	return -1
}
