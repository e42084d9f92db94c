// Package grid holds capture and log spreadsheets as an in-memory table of cell
// text, with readers and writers for CSV and XLSX files.
package grid

import (
	"path/filepath"
	"strings"
)

// Grid is a row-major table of cell text. Rows may be ragged; a missing cell reads
// as the empty string.
type Grid struct {
	// Sheet is the worksheet name the grid was read from (XLSX only).
	Sheet string
	Rows  [][]string
}

// New returns a grid holding rows.
func New(rows [][]string) *Grid {
	return &Grid{Rows: rows}
}

// Len returns the number of rows.
func (g *Grid) Len() int {
	return len(g.Rows)
}

// Width returns the length of the longest row.
func (g *Grid) Width() int {
	w := 0
	for _, row := range g.Rows {
		w = max(w, len(row))
	}
	return w
}

// Cell returns the text at (row, col), or "" outside the grid.
func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// Row returns the cells of row, or nil outside the grid.
func (g *Grid) Row(row int) []string {
	if row < 0 || row >= len(g.Rows) {
		return nil
	}
	return g.Rows[row]
}

// SetCell writes value at (row, col), padding the row with empty cells as needed.
// Writes outside the existing rows are ignored.
func (g *Grid) SetCell(row, col int, value string) {
	if row < 0 || row >= len(g.Rows) || col < 0 {
		return
	}
	r := g.Rows[row]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = value
	g.Rows[row] = r
}

// InsertColumn shifts every cell at or right of col one position to the right and
// leaves an empty cell at col. Rows that end before col are left untouched, as are
// empty rows.
func (g *Grid) InsertColumn(col int) {
	if col < 0 {
		return
	}
	for i, row := range g.Rows {
		if len(row) == 0 || len(row) < col {
			continue
		}
		row = append(row, "")
		copy(row[col+1:], row[col:])
		row[col] = ""
		g.Rows[i] = row
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	rows := make([][]string, len(g.Rows))
	for i, row := range g.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return &Grid{Sheet: g.Sheet, Rows: rows}
}

// Format identifies an on-disk tabular encoding.
type Format int

const (
	// FormatUnknown is any extension without a codec.
	FormatUnknown Format = iota
	// FormatCSV is comma separated text.
	FormatCSV
	// FormatXLSX is an Office Open XML workbook.
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// FormatFor picks the format from a file extension (case-insensitive).
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}
