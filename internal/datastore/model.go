// model.go defines the run history tables
package datastore

import "time"

// SyncRun is one batch synchronization run.
type SyncRun struct {
	ID         string    `gorm:"primaryKey;size:36"`
	StartedAt  time.Time `gorm:"index:idx_sync_runs_started_at"`
	FinishedAt time.Time
	LogPath    string
	CaptureDir string
	OutputDir  string
	Tolerance  *float64 // nil when drift checking was disabled
	DryRun     bool
	Canceled   bool

	Saved         int
	Skipped       int
	Failed        int
	DriftWarnings int

	Files []FileOutcome `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// FileOutcome records what happened to one capture file in a run.
type FileOutcome struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   string `gorm:"index;not null;size:36"`
	Path    string
	Output  string
	Subject string `gorm:"index:idx_file_outcomes_trial"`
	Task    string `gorm:"index:idx_file_outcomes_trial"`
	Trial   int    `gorm:"index:idx_file_outcomes_trial"`
	Status  string `gorm:"index;type:varchar(16)"`
	Stage   string `gorm:"type:varchar(32)"`
	Reason  string
	Error   string

	// Rows and columns are 1-indexed as a spreadsheet shows them; 0 means unknown.
	HeaderRow      int
	TimeColumn     int
	Frames         int
	UnparsableRows int
	MatchCount     int
	DriftWarnings  int
	DurationMs     int64

	Matches []EventMatch `gorm:"foreignKey:FileOutcomeID;constraint:OnDelete:CASCADE"`
}

// EventMatch is one log event matched to a frame row.
type EventMatch struct {
	ID            uint `gorm:"primaryKey"`
	FileOutcomeID uint `gorm:"index;not null"`
	Label         string
	LogRow        int
	EventTime     time.Time
	Row           int // 1-indexed frame row in the capture file
	FrameTime     time.Time
	DiffSeconds   float64
	Exceeds       bool `gorm:"index"`
}
