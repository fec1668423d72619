package monitor

import (
	"math"
	"sync"
	"testing"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu        sync.Mutex
	gaugeVals []float64
	alerts    int
}

func (m *MockMetrics) ConfidenceAvgSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gaugeVals = append(m.gaugeVals, v)
}

func (m *MockMetrics) DriftAlertsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts++
}

func (m *MockMetrics) lastGauge() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.gaugeVals) == 0 {
		return math.NaN()
	}
	return m.gaugeVals[len(m.gaugeVals)-1]
}

func (m *MockMetrics) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alerts
}

func TestDrift_WindowNeverExceedsCapacity(t *testing.T) {
	d := New(Config{WindowSize: 5, DriftThreshold: 0.5}, nil)

	for i := 0; i < 50; i++ {
		d.Observe(0.9)
		if got := d.Snapshot().WindowLen; got > 5 {
			t.Fatalf("window length %d exceeds capacity 5", got)
		}
	}

	if got := d.Snapshot().WindowLen; got != 5 {
		t.Errorf("expected full window of 5, got %d", got)
	}
}

func TestDrift_EvictsOldestFirst(t *testing.T) {
	d := New(Config{WindowSize: 3, DriftThreshold: 0.0}, nil)

	for _, v := range []float64{0.1, 0.2, 0.3, 0.4} {
		d.Observe(v)
	}

	window := d.Window()
	expected := []float64{0.2, 0.3, 0.4}
	if len(window) != len(expected) {
		t.Fatalf("expected window length %d, got %d", len(expected), len(window))
	}
	for i, v := range expected {
		if window[i] != v {
			t.Errorf("window[%d] = %f, expected %f", i, window[i], v)
		}
	}
}

func TestDrift_MeanMatchesWindowContents(t *testing.T) {
	d := New(Config{WindowSize: 4, DriftThreshold: 0.0}, &MockMetrics{})

	values := []float64{0.91, 0.12, 0.53, 0.74, 0.35, 0.86}
	for _, v := range values {
		d.Observe(v)
	}

	// Window holds the last 4 values.
	want := (0.53 + 0.74 + 0.35 + 0.86) / 4
	got := d.Snapshot().AvgConf
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("mean = %.12f, expected %.12f", got, want)
	}
}

func TestDrift_GaugePublishedDuringColdStart(t *testing.T) {
	m := &MockMetrics{}
	d := New(Config{WindowSize: 10, DriftThreshold: 0.99}, m)

	d.Observe(0.4)
	if math.Abs(m.lastGauge()-0.4) > 1e-9 {
		t.Errorf("gauge = %f after first observation, expected 0.4", m.lastGauge())
	}

	d.Observe(0.6)
	if math.Abs(m.lastGauge()-0.5) > 1e-9 {
		t.Errorf("gauge = %f after second observation, expected 0.5", m.lastGauge())
	}

	// Below threshold but window not full: no alert.
	if m.alertCount() != 0 {
		t.Errorf("expected no alerts during cold-start, got %d", m.alertCount())
	}
}

func TestDrift_AlertScenario(t *testing.T) {
	m := &MockMetrics{}
	d := New(Config{WindowSize: 3, DriftThreshold: 0.5}, m)

	d.Observe(0.9)
	d.Observe(0.8)
	if math.Abs(m.lastGauge()-0.85) > 1e-9 {
		t.Errorf("gauge = %f, expected 0.85", m.lastGauge())
	}
	if m.alertCount() != 0 {
		t.Errorf("expected no alert with partial window, got %d", m.alertCount())
	}

	d.Observe(0.1)
	if math.Abs(m.lastGauge()-0.6) > 1e-9 {
		t.Errorf("gauge = %f, expected 0.6", m.lastGauge())
	}
	if m.alertCount() != 0 {
		t.Errorf("expected no alert at mean 0.6 >= 0.5, got %d", m.alertCount())
	}

	d.Observe(0.05)
	want := (0.8 + 0.1 + 0.05) / 3
	if math.Abs(m.lastGauge()-want) > 1e-9 {
		t.Errorf("gauge = %f, expected %f", m.lastGauge(), want)
	}
	if m.alertCount() != 1 {
		t.Errorf("expected 1 alert after degradation, got %d", m.alertCount())
	}
}

func TestDrift_AlertIsLevelTriggered(t *testing.T) {
	m := &MockMetrics{}
	d := New(Config{WindowSize: 2, DriftThreshold: 0.5}, m)

	// Every observation keeps the full-window mean below threshold.
	for i := 0; i < 5; i++ {
		d.Observe(0.1)
	}

	// First observation only fills the window; the remaining 4 all fire.
	if m.alertCount() != 4 {
		t.Errorf("expected 4 level-triggered alerts, got %d", m.alertCount())
	}
}

func TestDrift_SnapshotDoesNotMutate(t *testing.T) {
	d := New(Config{WindowSize: 3, DriftThreshold: 0.5}, nil)
	d.Observe(0.9)
	d.Observe(0.8)

	before := d.Window()
	for i := 0; i < 10; i++ {
		d.Snapshot()
	}
	after := d.Window()

	if len(before) != len(after) {
		t.Fatalf("snapshot changed window length: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("snapshot changed window[%d]: %f -> %f", i, before[i], after[i])
		}
	}
}

func TestDrift_ConcurrentObserve(t *testing.T) {
	m := &MockMetrics{}
	d := New(Config{WindowSize: 8, DriftThreshold: 0.0}, m)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				d.Observe(0.7)
			}
		}()
	}
	wg.Wait()

	snap := d.Snapshot()
	if snap.WindowLen != 8 {
		t.Errorf("expected full window after concurrent observes, got %d", snap.WindowLen)
	}
	if math.Abs(snap.AvgConf-0.7) > 1e-9 {
		t.Errorf("expected mean 0.7, got %f", snap.AvgConf)
	}
}
