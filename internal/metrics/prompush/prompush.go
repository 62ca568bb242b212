// Package prompush adapts the metrics.Backend interface to a Prometheus
// Pushgateway. A batch job has no scrape endpoint worth exposing, so the
// backend collects into a private Registry and pushes the whole thing on
// Flush at the end of the run.
//
// All Prometheus-specific dependencies live here; swapping to another
// metrics system leaves the rest of the pipeline untouched.
package prompush

import (
	"fmt"

	"tabetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // tabetl_step_total
	stepDuration *prometheus.SummaryVec // tabetl_step_duration_seconds

	recordCounter *prometheus.CounterVec // tabetl_records_total
	batchCounter  prometheus.Counter     // tabetl_batches_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway grouping key and defaults to "tabetl"; gatewayURL is required.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tabetl"
	}

	reg := prometheus.NewRegistry()

	// The job label is carried by the Pushgateway grouping key, so the
	// collectors only partition by step/status and kind.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabetl_step_total",
			Help: "Pipeline stage executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "tabetl_step_duration_seconds",
			Help:       "Pipeline stage durations in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabetl_records_total",
			Help: "Row-level counts per kind (ingested, coerce_dropped, report_rows, loaded).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tabetl_batches_total",
			Help: "Insert batches flushed to the database sink.",
		},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, recordCounter, batchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		batchCounter:  batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "tabetl_step_total":
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case "tabetl_records_total":
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)

	case "tabetl_batches_total":
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "tabetl_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
