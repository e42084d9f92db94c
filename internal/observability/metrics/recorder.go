package metrics

// Recorder records generic operations. Components depend on it instead of the
// concrete collectors.
type Recorder interface {
	// RecordOperation counts an operation with its outcome status.
	RecordOperation(operation, status string)
	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(operation string, seconds float64)
	// RecordError counts a failed operation by error type.
	RecordError(operation, errorType string)
}

// NoOpRecorder discards everything.
type NoOpRecorder struct{}

func (NoOpRecorder) RecordOperation(string, string) {}
func (NoOpRecorder) RecordDuration(string, float64) {}
func (NoOpRecorder) RecordError(string, string)     {}

var (
	_ Recorder = NoOpRecorder{}
	_ Recorder = (*DatastoreMetrics)(nil)
)
