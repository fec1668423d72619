package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry_IsolatedState(t *testing.T) {
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.PredictionsInc()
	a.PredictionsInc()

	if got := testutil.ToFloat64(a.Predictions); got != 2 {
		t.Errorf("expected 2 predictions on a, got %f", got)
	}
	if got := testutil.ToFloat64(b.Predictions); got != 0 {
		t.Errorf("expected isolated registry b to stay at 0, got %f", got)
	}
}

func TestMetrics_CounterMethods(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.FallbacksInc()
	m.RequestErrorsInc()
	m.DriftAlertsInc()
	m.ValidationWarningsInc()
	m.ValidationWarningsInc()

	if got := testutil.ToFloat64(m.Fallbacks); got != 1 {
		t.Errorf("fallback_count = %f", got)
	}
	if got := testutil.ToFloat64(m.RequestErrors); got != 1 {
		t.Errorf("request_errors_total = %f", got)
	}
	if got := testutil.ToFloat64(m.DriftAlerts); got != 1 {
		t.Errorf("drift_alerts_total = %f", got)
	}
	if got := testutil.ToFloat64(m.ValidationWarnings); got != 2 {
		t.Errorf("validation_warnings_total = %f", got)
	}
}

func TestMetrics_ConfidenceGauge(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ConfidenceAvgSet(0.85)
	if got := testutil.ToFloat64(m.ConfidenceAvg); got != 0.85 {
		t.Errorf("model_confidence_avg = %f, expected 0.85", got)
	}

	// Gauge must track the latest window mean, not accumulate.
	m.ConfidenceAvgSet(0.31)
	if got := testutil.ToFloat64(m.ConfidenceAvg); got != 0.31 {
		t.Errorf("model_confidence_avg = %f, expected 0.31", got)
	}
}

func TestMetrics_ModelLoadedGauge(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ModelLoadedSet(true)
	if got := testutil.ToFloat64(m.ModelLoaded); got != 1 {
		t.Errorf("model_loaded = %f, expected 1", got)
	}

	m.ModelLoadedSet(false)
	if got := testutil.ToFloat64(m.ModelLoaded); got != 0 {
		t.Errorf("model_loaded = %f, expected 0", got)
	}
}
