package summary

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ricki-pierce/integrating4Fears/internal/datastore"
)

// PrintRuns writes one table row per stored run.
func PrintRuns(w io.Writer, runs []datastore.SyncRun) {
	if len(runs) == 0 {
		infoColor.Fprintln(w, "no runs recorded")
		return
	}

	t := NewTable([]string{"Run", "Started", "Captures", "Files", "Saved", "Skipped", "Failed", "Drift"})
	for _, r := range runs {
		started := r.StartedAt.Local().Format("2006-01-02 15:04:05")
		if r.Canceled {
			started += " (canceled)"
		}
		t.AddRow([]string{
			r.ID[:min(8, len(r.ID))],
			started,
			r.CaptureDir,
			fmt.Sprint(len(r.Files)),
			fmt.Sprint(r.Saved),
			fmt.Sprint(r.Skipped),
			fmt.Sprint(r.Failed),
			fmt.Sprint(r.DriftWarnings),
		})
	}
	t.Render(w)
}

// PrintRun writes the file outcomes of one stored run.
func PrintRun(w io.Writer, run *datastore.SyncRun) {
	headerColor.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "log: %s\ncaptures: %s\noutput: %s\n\n", run.LogPath, run.CaptureDir, run.OutputDir)

	t := NewTable([]string{"File", "Status", "Stage", "Matches", "Drift", "Reason"})
	for _, f := range run.Files {
		t.AddRow([]string{
			filepath.Base(f.Path),
			f.Status,
			f.Stage,
			fmt.Sprint(f.MatchCount),
			fmt.Sprint(f.DriftWarnings),
			f.Reason,
		})
	}
	t.Render(w)
}
