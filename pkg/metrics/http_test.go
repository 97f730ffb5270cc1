package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestCountsByLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/api/v1/orders", "200", 25*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/orders", "200", 30*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/orders", "422", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/orders", "200")); got != 2 {
		t.Fatalf("expected 2 GET requests recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/v1/orders", "422")); got != 1 {
		t.Fatalf("expected 1 POST request recorded, got %v", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewHTTPMetrics(nil)
	m.ObserveRequest("GET", "/", "200", time.Millisecond)
	m.IncInflight()
	m.DecInflight()
}

func TestInflightGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncInflight()
	m.IncInflight()
	m.DecInflight()

	if got := testutil.ToFloat64(m.inflight); got != 1 {
		t.Fatalf("expected 1 in-flight request, got %v", got)
	}
}

func TestEmptyLabelNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("", "", "", time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("unknown", "unknown", "unknown")); got != 1 {
		t.Fatalf("expected normalized labels, got %v", got)
	}
}
