// Package metrics provides Prometheus metrics collection for the role
// inference service. It defines the counters and gauges exposed on the
// pull-based /metrics endpoint: served predictions, fallback triggers,
// rolling confidence, and supporting health signals.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the inference service.
type Metrics struct {
	// Serving metrics
	Predictions     prometheus.Counter // Total predictions served by the model
	Fallbacks       prometheus.Counter // Total fallback responses returned
	RequestErrors   prometheus.Counter // Total failed requests (validation or feature errors)
	PredictDuration prometheus.Histogram

	// Monitoring metrics
	ConfidenceAvg      prometheus.Gauge     // Rolling average of model confidence
	ConfidenceScores   prometheus.Histogram // Distribution of per-request confidence
	DriftAlerts        prometheus.Counter   // Total drift alert firings
	ValidationWarnings prometheus.Counter   // Total soft validation warnings logged

	// Model lifecycle metrics
	ModelLoaded prometheus.Gauge // 1 when a model artifact is serving, 0 otherwise
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// Tests get isolated metric state without touching the global registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_count",
			Help: "Total predictions served",
		}),
		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "fallback_count",
			Help: "Total fallback triggers",
		}),
		RequestErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "request_errors_total",
			Help: "Total requests failed with validation or feature errors",
		}),
		PredictDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "predict_duration_seconds",
			Help:    "End-to-end prediction request duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		ConfidenceAvg: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_confidence_avg",
			Help: "Rolling average of model confidence",
		}),
		ConfidenceScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_confidence",
			Help:    "Distribution of per-prediction confidence scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		DriftAlerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "drift_alerts_total",
			Help: "Total drift alert firings (level-triggered)",
		}),
		ValidationWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_warnings_total",
			Help: "Total soft input validation warnings",
		}),
		ModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether a model artifact is currently serving (1) or absent (0)",
		}),
	}
}

// PredictionsInc implements serve.MetricsInterface.
func (m *Metrics) PredictionsInc() { m.Predictions.Inc() }

// FallbacksInc implements serve.MetricsInterface.
func (m *Metrics) FallbacksInc() { m.Fallbacks.Inc() }

// RequestErrorsInc implements serve.MetricsInterface.
func (m *Metrics) RequestErrorsInc() { m.RequestErrors.Inc() }

// PredictDurationObserve implements serve.MetricsInterface.
func (m *Metrics) PredictDurationObserve(v float64) { m.PredictDuration.Observe(v) }

// ConfidenceAvgSet implements monitor.MetricsInterface.
func (m *Metrics) ConfidenceAvgSet(v float64) { m.ConfidenceAvg.Set(v) }

// ConfidenceObserve implements serve.MetricsInterface.
func (m *Metrics) ConfidenceObserve(v float64) { m.ConfidenceScores.Observe(v) }

// DriftAlertsInc implements monitor.MetricsInterface.
func (m *Metrics) DriftAlertsInc() { m.DriftAlerts.Inc() }

// ValidationWarningsInc implements serve.MetricsInterface.
func (m *Metrics) ValidationWarningsInc() { m.ValidationWarnings.Inc() }

// ModelLoadedSet implements serve.MetricsInterface.
func (m *Metrics) ModelLoadedSet(loaded bool) {
	if loaded {
		m.ModelLoaded.Set(1)
	} else {
		m.ModelLoaded.Set(0)
	}
}
