// Package eventlog reads the behavioral event log, classifies event labels and
// keeps the records in an in-memory store keyed by trial.
package eventlog

import (
	"github.com/ricki-pierce/integrating4Fears/internal/identity"
	"github.com/ricki-pierce/integrating4Fears/internal/timestamp"
)

// EventRecord is one row of the behavioral log. Records are read-only once loaded.
type EventRecord struct {
	// Row is the 1-indexed spreadsheet row the record was read from.
	Row     int
	Subject string
	Task    string
	Trial   int
	// RawTimestamp is the cell text as logged.
	RawTimestamp string
	// Timestamp is valid only when TimestampErr is nil.
	Timestamp    timestamp.Instant
	TimestampErr error
	Label        string
	// DurationMs is nil when the log has no duration or the cell is blank.
	DurationMs *int
}

// Key returns the normalized trial key of the record.
func (r EventRecord) Key() identity.TrialKey {
	return identity.NewTrialKey(r.Subject, r.Task, r.Trial)
}

// HasTimestamp reports whether the timestamp cell parsed.
func (r EventRecord) HasTimestamp() bool {
	return r.TimestampErr == nil
}
