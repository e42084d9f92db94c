// Package observability bundles the Prometheus collectors of a qtmsync process and
// exports them in the node_exporter textfile format.
package observability

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricki-pierce/integrating4Fears/internal/analysis"
	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/observability/metrics"
)

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	Sync      *metrics.SyncMetrics
	Datastore *metrics.DatastoreMetrics
}

// NewMetrics creates a registry and registers every collector on it.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	syncMetrics, err := metrics.NewSyncMetrics(registry)
	if err != nil {
		return nil, metricsError(err, "register_sync")
	}
	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, metricsError(err, "register_datastore")
	}

	return &Metrics{
		registry:  registry,
		Sync:      syncMetrics,
		Datastore: datastoreMetrics,
	}, nil
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Recorder adapts the sync collectors to analysis.Recorder.
func (m *Metrics) Recorder() analysis.Recorder {
	return syncRecorder{m: m.Sync}
}

// ObserveReport records the outcome of a finished run.
func (m *Metrics) ObserveReport(report *analysis.Report) {
	if report == nil {
		return
	}
	m.Sync.RecordRun(report.Canceled, report.FinishedAt)
}

// WriteTextfile writes the current metric values to path. The file is replaced
// atomically so a collector never reads a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(err, dir)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.New(err).
			Component("observability").
			Category(errors.CategoryMetrics).
			Context("operation", "write_textfile").
			FileContext(path).
			Build()
	}
	GetLogger().Debug("metrics written", logger.String("path", path))
	return nil
}

type syncRecorder struct {
	m *metrics.SyncMetrics
}

func (r syncRecorder) RecordFile(status analysis.Status, stage analysis.Stage, d time.Duration) {
	r.m.RecordFile(string(status), string(stage), d)
}

func (r syncRecorder) RecordDrift(seconds float64, exceeded bool) {
	r.m.RecordDrift(seconds, exceeded)
}

func (r syncRecorder) RecordParseFailures(kind string, n int) {
	r.m.RecordParseFailures(kind, n)
}

func metricsError(err error, operation string) error {
	return errors.New(err).
		Component("observability").
		Category(errors.CategoryMetrics).
		Context("operation", operation).
		Build()
}
