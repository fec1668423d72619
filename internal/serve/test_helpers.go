package serve

import (
	"fmt"
	"sync"

	"roleserve/internal/features"
)

// MockMetrics implements ServerMetrics for testing
type MockMetrics struct {
	mu                 sync.Mutex
	predictions        int
	fallbacks          int
	requestErrors      int
	validationWarnings int
	confidences        []float64
	durations          []float64
}

func (m *MockMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) FallbacksInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *MockMetrics) RequestErrorsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestErrors++
}

func (m *MockMetrics) ValidationWarningsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationWarnings++
}

func (m *MockMetrics) ConfidenceObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confidences = append(m.confidences, v)
}

func (m *MockMetrics) PredictDurationObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, v)
}

func (m *MockMetrics) Predictions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions
}

func (m *MockMetrics) Fallbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallbacks
}

func (m *MockMetrics) RequestErrors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestErrors
}

func (m *MockMetrics) ValidationWarnings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validationWarnings
}

// stubHandle implements model.Handle with a fixed probability vector
type stubHandle struct {
	classes []string
	proba   []float64
	err     error
}

func (h *stubHandle) Classes() []string { return h.classes }

func (h *stubHandle) PredictProba(vec []float64) ([]float64, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.proba, nil
}

// stubAdapter implements features.Adapter with a fixed vector
type stubAdapter struct {
	vec []float64
	err error
}

func (a *stubAdapter) Vectorize(p features.CandidateProfile) ([]float64, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.vec != nil {
		return a.vec, nil
	}
	return []float64{1, 0, 1}, nil
}

var errFeature = fmt.Errorf("feature construction blew up")
