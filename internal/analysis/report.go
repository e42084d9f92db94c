package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ricki-pierce/integrating4Fears/internal/identity"
	"github.com/ricki-pierce/integrating4Fears/internal/matcher"
)

// Status is the outcome of one capture file.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusDryRun  Status = "dry-run"
	StatusSkipped Status = "skipped"
	// StatusFailed marks a file that was fully matched but could not be written.
	StatusFailed Status = "failed"
)

// FileResult describes what happened to one capture file.
type FileResult struct {
	Path     string
	Output   string
	Identity identity.Identity
	Status   Status
	// Stage is the last state reached, or for skips the state that was not reached.
	Stage  Stage
	Reason string
	Err    error

	HeaderRow      int // 0-indexed
	HeaderDetected bool
	TimeColumn     int // 0-indexed, after annotation columns were inserted
	Frames         int
	UnparsableRows int
	Matches        []matcher.MatchResult
	DriftWarnings  int
	Duration       time.Duration
}

// Report summarizes a batch run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	LogPath    string
	CaptureDir string
	OutputDir  string
	Tolerance  *float64
	DryRun     bool
	Canceled   bool
	Files      []FileResult
}

func newReport(cfg *Config) *Report {
	return &Report{
		RunID:      uuid.New(),
		StartedAt:  time.Now(),
		LogPath:    cfg.LogPath,
		CaptureDir: cfg.CaptureDir,
		OutputDir:  cfg.OutputDir,
		Tolerance:  cfg.Tolerance,
		DryRun:     cfg.DryRun,
	}
}

// Counts tallies files by status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for i := range r.Files {
		counts[r.Files[i].Status]++
	}
	return counts
}

// DriftWarnings totals the drift warnings over all files.
func (r *Report) DriftWarnings() int {
	n := 0
	for i := range r.Files {
		n += r.Files[i].DriftWarnings
	}
	return n
}

// Skipped returns the skipped files in discovery order.
func (r *Report) Skipped() []FileResult {
	var out []FileResult
	for i := range r.Files {
		if r.Files[i].Status == StatusSkipped {
			out = append(out, r.Files[i])
		}
	}
	return out
}
