// Package metrics records catalog activity as Prometheus metrics.
//
// foodmap is a short-lived CLI, so nothing is served over HTTP. Instead the
// registry is flushed to a node_exporter textfile-collector file at the end
// of a command when metrics.file is configured.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "foodmap"

// Outcome labels for import runs.
const (
	OutcomeSuccess          = "success"
	OutcomeParseError       = "parse_error"
	OutcomeFormatError      = "format_error"
	OutcomeTransactionError = "transaction_error"
)

// Metrics holds the counters and gauges for one process.
type Metrics struct {
	registry *prometheus.Registry

	ImportRuns     *prometheus.CounterVec
	RecordsWritten *prometheus.CounterVec
	ImagesRejected prometheus.Counter
	Exports        prometheus.Counter
	ExportedStores prometheus.Gauge
	StorageUsage   prometheus.Gauge
	StorageQuota   prometheus.Gauge
}

// New creates a Metrics bound to its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ImportRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Import runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		RecordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "records_total",
			Help:      "Records written by import, by mode and action (added or updated)",
		}, []string{"mode", "action"}),
		ImagesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "images_rejected_total",
			Help:      "Embedded menu images dropped because their signature was not a supported image",
		}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "runs_total",
			Help:      "Completed exports",
		}),
		ExportedStores: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "stores",
			Help:      "Number of records in the most recent export",
		}),
		StorageUsage: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "usage_bytes",
			Help:      "Bytes used by the catalog database at the last storage check",
		}),
		StorageQuota: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "quota_bytes",
			Help:      "Bytes available to the catalog at the last storage check",
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordImport counts one import run.
func (m *Metrics) RecordImport(mode, outcome string, added, updated, imagesRejected int) {
	if m == nil {
		return
	}
	m.ImportRuns.WithLabelValues(mode, outcome).Inc()
	if added > 0 {
		m.RecordsWritten.WithLabelValues(mode, "added").Add(float64(added))
	}
	if updated > 0 {
		m.RecordsWritten.WithLabelValues(mode, "updated").Add(float64(updated))
	}
	if imagesRejected > 0 {
		m.ImagesRejected.Add(float64(imagesRejected))
	}
}

// RecordExport counts one export of n records.
func (m *Metrics) RecordExport(n int) {
	if m == nil {
		return
	}
	m.Exports.Inc()
	m.ExportedStores.Set(float64(n))
}

// RecordStorage stores the last observed usage and quota.
func (m *Metrics) RecordStorage(usage, quota uint64) {
	if m == nil {
		return
	}
	m.StorageUsage.Set(float64(usage))
	m.StorageQuota.Set(float64(quota))
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
