// Package summary renders run reports, inspections and run history for the terminal.
package summary

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

func statusColor(s analysis.Status) *color.Color {
	switch s {
	case analysis.StatusSaved, analysis.StatusDryRun:
		return successColor
	case analysis.StatusSkipped:
		return warnColor
	default:
		return errorColor
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// PrintFile writes the outcome of one capture file followed by its drift warnings.
func PrintFile(w io.Writer, r *analysis.FileResult) {
	name := filepath.Base(r.Path)
	statusColor(r.Status).Fprintf(w, "%-8s ", r.Status)

	switch r.Status {
	case analysis.StatusSaved, analysis.StatusDryRun:
		target := r.Output
		if r.Status == analysis.StatusDryRun {
			target = "(not written)"
		}
		fmt.Fprintf(w, "%s -> %s (%s, %s", name, target, plural(r.Frames, "frame", "frames"), plural(len(r.Matches), "match", "matches"))
		if r.DriftWarnings > 0 {
			fmt.Fprint(w, ", ")
			warnColor.Fprint(w, plural(r.DriftWarnings, "drift warning", "drift warnings"))
		}
		fmt.Fprintln(w, ")")
	default:
		fmt.Fprintf(w, "%s: %s [%s]\n", name, r.Reason, r.Stage)
		if r.Err != nil {
			infoColor.Fprintf(w, "         %v\n", r.Err)
		}
	}

	for _, m := range r.Matches {
		if !m.Exceeds {
			continue
		}
		warnColor.Fprintf(w, "         ⚠ %q at row %d is %.3f s from its frame\n", m.Event.Label, m.Row+1, m.Diff)
	}
}

// PrintReport writes every file outcome and the run totals.
func PrintReport(w io.Writer, report *analysis.Report) {
	headerColor.Fprintf(w, "Run %s\n", report.RunID)
	for i := range report.Files {
		PrintFile(w, &report.Files[i])
	}

	counts := report.Counts()
	saved := counts[analysis.StatusSaved] + counts[analysis.StatusDryRun]
	line := fmt.Sprintf("%s: %d saved, %d skipped, %d failed, %s in %s",
		plural(len(report.Files), "file", "files"),
		saved,
		counts[analysis.StatusSkipped],
		counts[analysis.StatusFailed],
		plural(report.DriftWarnings(), "drift warning", "drift warnings"),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	fmt.Fprintln(w)
	switch {
	case report.Canceled:
		errorColor.Fprintf(w, "✗ canceled, %s\n", line)
	case counts[analysis.StatusFailed] > 0:
		errorColor.Fprintf(w, "✗ %s\n", line)
	case counts[analysis.StatusSkipped] > 0 || report.DriftWarnings() > 0:
		warnColor.Fprintf(w, "⚠ %s\n", line)
	default:
		successColor.Fprintf(w, "✓ %s\n", line)
	}
	if report.DryRun {
		infoColor.Fprintln(w, "dry run: no files were written")
	}
}

// PrintInspection writes what qtmsync would read from a capture file.
func PrintInspection(w io.Writer, ins *analysis.Inspection) {
	t := NewTable([]string{"Property", "Value"})
	t.AddRow([]string{"file", ins.Path})
	if ins.IdentityErr != nil {
		t.AddRow([]string{"identity", "invalid: " + ins.IdentityErr.Error()})
	} else {
		t.AddRow([]string{"task", ins.Identity.Task})
		t.AddRow([]string{"trial", fmt.Sprint(ins.Identity.Trial)})
		t.AddRow([]string{"subject", ins.Identity.Subject})
	}
	t.AddRow([]string{"rows", fmt.Sprint(ins.Rows)})

	header := fmt.Sprint(ins.HeaderRow + 1)
	if !ins.HeaderDetected {
		header += " (fallback)"
	}
	t.AddRow([]string{"header row", header})
	if ins.TimeColumn >= 0 {
		t.AddRow([]string{"time column", fmt.Sprintf("%d (%s)", ins.TimeColumn+1, ins.TimeHeader)})
	} else {
		t.AddRow([]string{"time column", "not found"})
	}
	t.AddRow([]string{"data starts at row", fmt.Sprint(ins.DataStartRow + 1)})
	t.AddRow([]string{"frames", fmt.Sprint(ins.Frames)})
	t.AddRow([]string{"unparsable frame rows", fmt.Sprint(ins.UnparsableRows)})
	if ins.LogEvents >= 0 {
		t.AddRow([]string{"log events", fmt.Sprint(ins.LogEvents)})
		t.AddRow([]string{"start anchors", fmt.Sprint(ins.Anchors)})
	}
	t.Render(w)
}

// Table is a minimal aligned text table.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row; missing cells render empty.
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	for i, h := range t.headers {
		headerColor.Fprintf(w, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(w)
	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)
	for _, row := range t.rows {
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}
