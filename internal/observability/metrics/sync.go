package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics holds the collectors of the synchronization pipeline.
type SyncMetrics struct {
	filesTotal         *prometheus.CounterVec
	fileDuration       prometheus.Histogram
	matchDiff          prometheus.Histogram
	driftWarningsTotal prometheus.Counter
	parseFailuresTotal *prometheus.CounterVec
	runsTotal          *prometheus.CounterVec
	lastRunTimestamp   prometheus.Gauge

	collectors []prometheus.Collector
}

// NewSyncMetrics creates the collectors and registers them with registry.
func NewSyncMetrics(registry prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SyncMetrics) initMetrics() {
	m.filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qtmsync_files_total",
			Help: "Capture files processed, by outcome status and last pipeline stage",
		},
		[]string{"status", "stage"},
	)
	m.fileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qtmsync_file_duration_seconds",
		Help:    "Time spent synchronizing one capture file",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
	})
	m.matchDiff = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qtmsync_match_diff_seconds",
		Help:    "Absolute difference between an event and its nearest frame",
		Buckets: driftBuckets,
	})
	m.driftWarningsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qtmsync_drift_warnings_total",
		Help: "Matches whose difference exceeded the drift tolerance",
	})
	m.parseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qtmsync_parse_failures_total",
			Help: "Cells that could not be parsed, by kind (frame, event)",
		},
		[]string{"kind"},
	)
	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qtmsync_runs_total",
			Help: "Batch runs, by result (completed, canceled)",
		},
		[]string{"result"},
	)
	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qtmsync_last_run_timestamp_seconds",
		Help: "Unix time the last batch run finished",
	})

	m.collectors = []prometheus.Collector{
		m.filesTotal,
		m.fileDuration,
		m.matchDiff,
		m.driftWarningsTotal,
		m.parseFailuresTotal,
		m.runsTotal,
		m.lastRunTimestamp,
	}
}

// Describe implements prometheus.Collector
func (m *SyncMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *SyncMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordFile counts a processed file and its duration.
func (m *SyncMetrics) RecordFile(status, stage string, d time.Duration) {
	m.filesTotal.WithLabelValues(status, stage).Inc()
	m.fileDuration.Observe(d.Seconds())
}

// RecordDrift observes one match difference.
func (m *SyncMetrics) RecordDrift(seconds float64, exceeded bool) {
	m.matchDiff.Observe(seconds)
	if exceeded {
		m.driftWarningsTotal.Inc()
	}
}

// RecordParseFailures adds n unparsable cells of the given kind.
func (m *SyncMetrics) RecordParseFailures(kind string, n int) {
	if n <= 0 {
		return
	}
	m.parseFailuresTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordRun counts a finished batch run.
func (m *SyncMetrics) RecordRun(canceled bool, finished time.Time) {
	result := "completed"
	if canceled {
		result = "canceled"
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.lastRunTimestamp.Set(float64(finished.Unix()))
}
