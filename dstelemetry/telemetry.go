// Package dstelemetry implements the counters and histograms a DirSchema
// validation run emits: paths visited, errors recorded, adapter opens,
// plugin dispatches, and per-path evaluation duration.
//
// Grounded on the teacher's telemetry.System, thinned from a buffered,
// exporter-backed metrics pipeline (batching, flush timers, JSON wire
// events, a global singleton) down to process-local atomic counters and a
// running histogram summary — a validation run is a single process with
// no metrics backend to ship events to, so the buffering and exporter
// machinery has nothing to serve.
package dstelemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Names of the counters this module emits, kept as constants so callers
// and tests refer to the same strings the teacher's dashboards would.
const (
	CounterPathsValidated     = "dirschema_paths_validated_total"
	CounterErrors             = "dirschema_errors_total"
	CounterAdapterOpens       = "dirschema_adapter_opens_total"
	CounterPluginDispatches   = "dirschema_plugin_dispatches_total"
	HistogramEvaluateDuration = "dirschema_evaluate_duration_ms"
)

// HistogramSummary is a running count/sum/min/max for one histogram,
// mirroring the shape of the teacher's telemetry.HistogramSummary without
// the bucket-boundary machinery a local-only summary doesn't need.
type HistogramSummary struct {
	Count int64
	SumMS float64
	MinMS float64
	MaxMS float64
}

// Metrics accumulates the counters and histograms for one validation run.
// The zero value is ready to use; all methods are safe for concurrent use.
type Metrics struct {
	pathsValidated   int64
	errors           int64
	adapterOpens     int64
	pluginDispatches int64

	mu        sync.Mutex
	histogram HistogramSummary
}

// New returns a ready-to-use Metrics.
func New() *Metrics {
	return &Metrics{}
}

// IncPathsValidated increments the paths-validated counter by one.
func (m *Metrics) IncPathsValidated() { atomic.AddInt64(&m.pathsValidated, 1) }

// IncErrors increments the errors counter by n.
func (m *Metrics) IncErrors(n int) {
	if n > 0 {
		atomic.AddInt64(&m.errors, int64(n))
	}
}

// IncAdapterOpens increments the adapter-opens counter by one.
func (m *Metrics) IncAdapterOpens() { atomic.AddInt64(&m.adapterOpens, 1) }

// IncPluginDispatches increments the plugin-dispatches counter by one.
func (m *Metrics) IncPluginDispatches() { atomic.AddInt64(&m.pluginDispatches, 1) }

// ObserveEvaluateDuration folds one evaluatePath call's wall time into the
// evaluate-duration histogram.
func (m *Metrics) ObserveEvaluateDuration(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.histogram.Count == 0 || ms < m.histogram.MinMS {
		m.histogram.MinMS = ms
	}
	if ms > m.histogram.MaxMS {
		m.histogram.MaxMS = ms
	}
	m.histogram.SumMS += ms
	m.histogram.Count++
}

// Snapshot returns the current counter values and histogram summary.
func (m *Metrics) Snapshot() (counters map[string]int64, histogram HistogramSummary) {
	m.mu.Lock()
	histogram = m.histogram
	m.mu.Unlock()

	counters = map[string]int64{
		CounterPathsValidated:   atomic.LoadInt64(&m.pathsValidated),
		CounterErrors:           atomic.LoadInt64(&m.errors),
		CounterAdapterOpens:     atomic.LoadInt64(&m.adapterOpens),
		CounterPluginDispatches: atomic.LoadInt64(&m.pluginDispatches),
	}
	return counters, histogram
}
