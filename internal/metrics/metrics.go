package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sentiment"

var (
	// RequestsTotal counts HTTP requests by process, method, route and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"process", "method", "route", "status"})

	// AnalyzeTotal counts analyze calls by outcome.
	AnalyzeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyze_total",
		Help:      "Analyze calls by outcome.",
	}, []string{"outcome"})

	// GenerateDuration tracks generation latency per backend and model.
	GenerateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generate_duration_seconds",
		Help:      "Time spent waiting for the model server to generate.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
	}, []string{"backend", "model"})

	// ModelSelections counts how often each candidate won model selection.
	ModelSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_selections_total",
		Help:      "Model selections made from the server's tag list.",
	}, []string{"model"})

	// ModelPulls counts automatic model downloads by result.
	ModelPulls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_pulls_total",
		Help:      "Automatic model downloads by result (started, succeeded, failed).",
	}, []string{"model", "result"})

	// BackendUp records the last liveness check made by the view (1 up, 0 down).
	BackendUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "view_backend_up",
		Help:      "Whether the last status check of a backend succeeded.",
	}, []string{"target"})
)
