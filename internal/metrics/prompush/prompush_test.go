package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tabetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec cell.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if m.GetSummary() == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	sum := m.GetSummary()
	return sum.GetSampleCount(), sum.GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{
			name:       "missing gateway URL returns error",
			jobName:    "nightly",
			gatewayURL: "",
			wantErr:    true,
		},
		{
			name:        "empty job name uses default",
			jobName:     "",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "tabetl",
		},
		{
			name:        "explicit job name is preserved",
			jobName:     "nightly",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "nightly",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewBackend(%q, %q) error = nil, want non-nil", tt.jobName, tt.gatewayURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend: %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}

			// Label cardinality sanity: these must not panic.
			b.stepCounter.WithLabelValues("ingest", "success").Add(1)
			b.stepDuration.WithLabelValues("report", "failure").Observe(0.5)
			b.recordCounter.WithLabelValues("ingested").Add(1)
			b.batchCounter.Add(1)
		})
	}
}

func TestIncCounterRouting(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("tabetl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("tabetl_step_total", 3, metrics.Labels{"step": "ingest", "status": "success"})
	b.IncCounter("tabetl_records_total", 5, metrics.Labels{"kind": "coerce_dropped"})
	b.IncCounter("tabetl_batches_total", 2, metrics.Labels{})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("ingest", "success")); got != 3 {
		t.Errorf("stepCounter = %v, want 3", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("coerce_dropped")); got != 5 {
		t.Errorf("recordCounter = %v, want 5", got)
	}
	if got := readCounterValue(t, b.batchCounter); got != 2 {
		t.Errorf("batchCounter = %v, want 2", got)
	}
}

func TestIncCounterNilCollectors(t *testing.T) {
	t.Parallel()

	b := &Backend{} // zero value: all collectors nil

	b.IncCounter("tabetl_step_total", 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter("tabetl_records_total", 1, metrics.Labels{"kind": "ingested"})
	b.IncCounter("tabetl_batches_total", 1, metrics.Labels{})
	b.ObserveHistogram("tabetl_step_duration_seconds", 1, metrics.Labels{})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("tabetl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.ObserveHistogram("tabetl_step_duration_seconds", 1.5, metrics.Labels{"step": "load", "status": "success"})
	b.ObserveHistogram("other_metric", 2.0, metrics.Labels{"step": "load", "status": "success"})

	count, sum := readSummaryCountSum(t, b.stepDuration, "load", "success")
	if count != 1 || sum != 1.5 {
		t.Fatalf("summary count/sum = %d/%v, want 1/1.5", count, sum)
	}
}

func TestFlushPushesToGateway(t *testing.T) {
	t.Parallel()

	type pushInfo struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushInfo{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("nightly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("tabetl_step_total", 1, metrics.Labels{"step": "ingest", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	select {
	case got := <-reqCh:
		if got.method == "" || got.path == "" || got.bodyLen == 0 {
			t.Fatalf("unexpected push request: %+v", got)
		}
	default:
		t.Fatal("Flush did not reach the Pushgateway")
	}
}
