// Package metrics is a small backend-agnostic recording layer for the
// pipeline's operational counters and timings.
//
// A single global Backend is pluggable and defaults to a no-op, so every
// stage may record unconditionally whether or not a real metrics system is
// configured. Concrete systems (Prometheus Pushgateway, Datadog) live in
// subpackages and are selected at startup; the rest of the codebase depends
// only on this package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal surface a metrics system must provide.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics for backends that need it.
	Flush() error
}

// nopBackend keeps metric calls safe when nothing is configured.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep records one pipeline stage execution: a success/failure count
// plus its duration. Steps are the coarse phases of a run, e.g. "ingest",
// "report", "load".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("tabetl_step_total", 1, lbls)
	backend.ObserveHistogram("tabetl_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRow increments a row-level counter for the given job and kind.
//
// Kinds used by the pipeline:
//   - "ingested"        rows appended to the store
//   - "coerce_dropped"  measure values dropped during integer coercion
//   - "report_rows"     body lines written to a report
//   - "loaded"          rows inserted into the database sink
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("tabetl_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the insert-batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("tabetl_batches_total", float64(delta), Labels{
		"job": job,
	})
}
