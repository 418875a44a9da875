// Package metrics exposes Prometheus collectors for triage, curation and
// narrative generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	triaged     *prometheus.CounterVec
	curations   *prometheus.CounterVec
	findings    *prometheus.CounterVec
	narratives  *prometheus.CounterVec
	aggregation prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		triaged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "changedesk",
			Name:      "projects_triaged_total",
			Help:      "Projects scored and classified, by resulting tier.",
		}, []string{"tier"}),
		curations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "changedesk",
			Name:      "cohort_curations_total",
			Help:      "Cohorts curated, by recommended pathway.",
		}, []string{"pathway"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "changedesk",
			Name:      "compliance_findings_total",
			Help:      "Compliance risk findings raised, by code.",
		}, []string{"code"}),
		narratives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "changedesk",
			Name:      "narratives_total",
			Help:      "Narrative drafts, by prompt and outcome.",
		}, []string{"prompt", "outcome"}),
		aggregation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "changedesk",
			Name:      "portfolio_aggregation_seconds",
			Help:      "Time spent computing portfolio metrics.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	m.registry.MustRegister(
		m.triaged, m.curations, m.findings, m.narratives, m.aggregation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Triaged counts a triage outcome.
func (m *Metrics) Triaged(tier string) {
	if m == nil {
		return
	}
	m.triaged.WithLabelValues(tier).Inc()
}

// Curated counts a cohort curation.
func (m *Metrics) Curated(pathway string) {
	if m == nil {
		return
	}
	m.curations.WithLabelValues(pathway).Inc()
}

// Finding counts a compliance finding.
func (m *Metrics) Finding(code string) {
	if m == nil {
		return
	}
	m.findings.WithLabelValues(code).Inc()
}

// Narrative counts a draft; failed drafts are labelled "failed".
func (m *Metrics) Narrative(prompt string, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	m.narratives.WithLabelValues(prompt, outcome).Inc()
}

// ObserveAggregation records how long a portfolio aggregation took.
func (m *Metrics) ObserveAggregation(start time.Time) {
	if m == nil {
		return
	}
	m.aggregation.Observe(time.Since(start).Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
