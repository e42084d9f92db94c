// Package metrics defines the Prometheus collectors of a synchronization run.
package metrics

// Operation names passed to Recorder.
const (
	OpDbQuery  = "db_query"
	OpDbInsert = "db_insert"
	OpDbUpdate = "db_update"
	OpDbDelete = "db_delete"
	OpDbSchema = "db_schema"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Histogram bucket parameters.
const (
	// BucketStart1ms starts a 1ms..~16s range with factor 2 and 15 buckets.
	BucketStart1ms = 0.001
	// BucketStart10ms starts a 10ms..~40s range.
	BucketStart10ms = 0.01
	BucketFactor2   = 2.0
	BucketCount12   = 12
	BucketCount15   = 15
)

// driftBuckets cover match differences from one frame at 1 kHz up to several seconds.
var driftBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
