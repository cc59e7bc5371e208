// Package metrics holds the Prometheus instruments of the reporting service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Document builder
	DocumentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_documents_generated_total",
			Help: "Total number of report documents generated",
		},
		[]string{"format", "path"}, // path: plain, visual, fallback
	)

	DocumentGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_document_generation_duration_seconds",
			Help:    "Time spent laying out and encoding a report document",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	DocumentFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_document_fallbacks_total",
			Help: "Visual report generations that fell back to the plain layout",
		},
		[]string{"reason"}, // capture_target_missing, render_failed
	)

	DocumentPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_document_pages",
			Help:    "Number of pages per generated PDF",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Delivery
	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_delivery_attempts_total",
			Help: "File delivery attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// Upstream services
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Requests sent to upstream services",
		},
		[]string{"upstream", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Collection and reporting
	ContentCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_records_collected_total",
			Help: "Content records collected from scraping actors",
		},
		[]string{"platform"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weekly_reports_generated_total",
			Help: "Weekly reports generated by recommendation source",
		},
		[]string{"source"}, // llm, rules
	)
)
