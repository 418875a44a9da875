package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Triaged("Full Change Management")
	m.Triaged("Full Change Management")
	m.Finding("vendor_red_rating")
	m.Narrative("change_brief", true)

	if got := testutil.ToFloat64(m.triaged.WithLabelValues("Full Change Management")); got != 2 {
		t.Errorf("triaged = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.findings.WithLabelValues("vendor_red_rating")); got != 1 {
		t.Errorf("findings = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.narratives.WithLabelValues("change_brief", "failed")); got != 1 {
		t.Errorf("narratives = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Triaged("x")
	m.Curated("x")
	m.Finding("x")
	m.Narrative("x", false)
	m.ObserveAggregation(time.Now())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Curated("AI Productivity Sprint")
	m.ObserveAggregation(time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"changedesk_cohort_curations_total", "changedesk_portfolio_aggregation_seconds"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("missing %s in exposition", want)
		}
	}
}
