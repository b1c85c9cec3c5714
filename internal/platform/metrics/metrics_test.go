package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	m.QuotaDecision("store", true)
	m.SetDegraded(true)
	m.SetLocalEntries(3)
	m.Prediction("oracle")
	m.OracleFailure("upstream_timeout")
	m.SourceFetch("featured", "succeeded", time.Millisecond)
	m.AggregateRecords(4)
	if m.Registry() != nil {
		t.Fatalf("nil manager should have no registry")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.QuotaDecision("store", true)
	m.QuotaDecision("store", true)
	m.QuotaDecision("local", false)
	m.Prediction("heuristic")

	if got := testutil.ToFloat64(m.quotaDecisions.WithLabelValues("store", "allowed")); got != 2 {
		t.Fatalf("store allowed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.quotaDecisions.WithLabelValues("local", "denied")); got != 1 {
		t.Fatalf("local denied = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.predictions.WithLabelValues("heuristic")); got != 1 {
		t.Fatalf("heuristic = %v, want 1", got)
	}
}

func TestDegradedGauge(t *testing.T) {
	m := New()
	m.SetDegraded(true)
	if got := testutil.ToFloat64(m.quotaDegraded); got != 1 {
		t.Fatalf("degraded = %v, want 1", got)
	}
	m.SetDegraded(false)
	if got := testutil.ToFloat64(m.quotaDegraded); got != 0 {
		t.Fatalf("degraded = %v, want 0", got)
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New(WithNamespace("gw"))
	m.SetLocalEntries(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gw_quota_local_entries 7") {
		t.Fatalf("missing gauge in body:\n%s", rec.Body.String())
	}
}
