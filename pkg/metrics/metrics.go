// Package metrics provides Prometheus instrumentation for Strata runs.
//
// # Overview
//
// The package exposes pre-registered collectors for the things an operator
// wants to watch across runs: rows produced per layer, layer latency, rows
// collapsed by deduplication, conflict resolutions per strategy, merge key
// mismatches and rows staged per source.
//
// # Basic Usage
//
//	timer := metrics.NewTimer("enriched_contacts")
//	out, err := processor.Process(ns)
//	metrics.ObserveLayer("enriched_contacts", "merge", out.Len(), timer.Stop())
//
// Metrics are cheap counters and histograms; recording them never fails and
// never influences the run.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LayerRows counts rows materialised by each layer.
	// Labels: layer (layer name), kind (union/merge)
	LayerRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_layer_rows_total",
			Help: "Total number of rows materialised per layer",
		},
		[]string{"layer", "kind"},
	)

	// LayerDuration tracks how long each layer takes to materialise.
	LayerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "strata_layer_duration_seconds",
			Help: "Layer processing latency in seconds",
			Buckets: []float64{
				0.001, // 1ms - small in-memory tables
				0.01,  // 10ms
				0.1,   // 100ms
				1,     // 1s - large merges
				10,    // 10s
			},
		},
		[]string{"layer", "kind"},
	)

	// DedupRowsRemoved counts rows collapsed by deduplication.
	// Labels: mode (drop/merge)
	DedupRowsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_dedup_rows_removed_total",
			Help: "Rows removed or merged away by composite-key deduplication",
		},
		[]string{"mode"},
	)

	// ConflictsResolved counts cells where both merge sides carried a value.
	// Labels: strategy
	ConflictsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_conflicts_resolved_total",
			Help: "Cells resolved from two non-null candidates",
		},
		[]string{"strategy"},
	)

	// KeyMismatches counts pairwise merges that fell back because merge keys
	// were missing on one side.
	KeyMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_key_mismatch_total",
			Help: "Pairwise merges skipped because merge keys were missing",
		},
		[]string{"layer"},
	)

	// SourceRows counts rows staged per source.
	// Labels: source (source name), connector (connector type)
	SourceRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_source_rows_total",
			Help: "Rows staged per source",
		},
		[]string{"source", "connector"},
	)

	// OutputRows counts rows handed to destinations.
	OutputRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_output_rows_total",
			Help: "Rows written per output",
		},
		[]string{"output", "connector"},
	)

	// HTTPRequests counts API calls made by HTTP based connectors.
	// Labels: host, outcome (2xx/4xx/5xx/error/retried)
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_http_requests_total",
			Help: "Connector HTTP requests by host and outcome",
		},
		[]string{"host", "outcome"},
	)

	// RunsTotal counts completed runs by status (success/failure).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_runs_total",
			Help: "Pipeline runs by final status",
		},
		[]string{"status"},
	)
)

// ObserveLayer records the output size and latency of one layer.
func ObserveLayer(layer, kind string, rows int, d time.Duration) {
	LayerRows.WithLabelValues(layer, kind).Add(float64(rows))
	LayerDuration.WithLabelValues(layer, kind).Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the label the timer was created with.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called
// repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
