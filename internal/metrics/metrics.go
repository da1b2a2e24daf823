// Package metrics exposes Prometheus collectors for fetch and analysis runs.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchOutcomesTotal      *prometheus.CounterVec
	fetchDurationSeconds    prometheus.Histogram
	analysesTotal           *prometheus.CounterVec
	analysisDurationSeconds prometheus.Histogram
	documentsPerAnalysis    prometheus.Histogram
	robotsDecisionsTotal    *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchOutcomesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impactlens_fetch_outcomes_total",
				Help: "Candidate URLs processed by the fetch scheduler, labeled by outcome reason.",
			},
			[]string{"reason"},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "impactlens_fetch_duration_seconds",
				Help:    "Duration of individual network fetches including extraction.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
		)

		analysesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impactlens_analyses_total",
				Help: "Entity analyses, labeled by status.",
			},
			[]string{"status"},
		)

		analysisDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "impactlens_analysis_duration_seconds",
				Help:    "End-to-end duration of one entity analysis.",
				Buckets: []float64{1, 5, 10, 20, 40, 60, 120, 240},
			},
		)

		documentsPerAnalysis = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "impactlens_documents_per_analysis",
				Help:    "Number of acquired documents per entity analysis.",
				Buckets: []float64{0, 1, 2, 5, 10, 15, 20},
			},
		)

		robotsDecisionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impactlens_robots_decisions_total",
				Help: "robots.txt policy lookups, labeled by decision.",
			},
			[]string{"decision"},
		)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveFetchOutcome counts one scheduler outcome.
func ObserveFetchOutcome(reason string) {
	if fetchOutcomesTotal == nil {
		return
	}
	fetchOutcomesTotal.WithLabelValues(reason).Inc()
}

// ObserveFetchDuration records one network fetch.
func ObserveFetchDuration(d time.Duration) {
	if fetchDurationSeconds == nil {
		return
	}
	fetchDurationSeconds.Observe(d.Seconds())
}

// ObserveAnalysis records a completed or failed analysis.
func ObserveAnalysis(status string, d time.Duration, documents int) {
	if analysesTotal == nil {
		return
	}
	analysesTotal.WithLabelValues(status).Inc()
	analysisDurationSeconds.Observe(d.Seconds())
	if status == "ok" {
		documentsPerAnalysis.Observe(float64(documents))
	}
}

// ObserveRobotsDecision counts an allow, deny or fail-open robots decision.
func ObserveRobotsDecision(decision string) {
	if robotsDecisionsTotal == nil {
		return
	}
	robotsDecisionsTotal.WithLabelValues(decision).Inc()
}
