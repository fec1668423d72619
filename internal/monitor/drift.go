// Package monitor tracks the statistical health of served predictions.
// It maintains a bounded sliding window of confidence scores and raises
// an operational alert when the rolling average degrades below the
// configured threshold, a proxy signal for model or data drift.
package monitor

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// MetricsInterface defines the metrics methods the drift monitor needs.
type MetricsInterface interface {
	ConfidenceAvgSet(float64)
	DriftAlertsInc()
}

// Config configures a drift monitor.
type Config struct {
	WindowSize     int     // sliding window capacity, must be positive
	DriftThreshold float64 // rolling mean below this (with a full window) fires the alert
}

// Drift is a bounded FIFO window of recent confidence scores with a
// threshold check on the arithmetic mean. All methods are safe for
// concurrent use; the critical section is O(window).
type Drift struct {
	mu        sync.Mutex
	window    []float64
	capacity  int
	threshold float64
	metrics   MetricsInterface
}

// Snapshot is a read-only view of the monitor state.
type Snapshot struct {
	WindowLen  int     `json:"window_len"`
	WindowSize int     `json:"window_size"`
	AvgConf    float64 `json:"avg_confidence"`
	Alerting   bool    `json:"alerting"`
}

// New creates a drift monitor. The metrics sink may be nil in tests.
func New(config Config, metrics MetricsInterface) *Drift {
	capacity := config.WindowSize
	if capacity <= 0 {
		capacity = 1
	}
	return &Drift{
		window:    make([]float64, 0, capacity),
		capacity:  capacity,
		threshold: config.DriftThreshold,
		metrics:   metrics,
	}
}

// Observe records one confidence score. The oldest value is evicted once
// the window is at capacity. The rolling mean is published on every call,
// including during cold-start with a partially filled window. The drift
// alert is level-triggered: it fires on every observation for which the
// window is full and the mean sits below the threshold.
func (d *Drift) Observe(confidence float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.window) >= d.capacity {
		d.window = d.window[1:]
	}
	d.window = append(d.window, confidence)

	avg := mean(d.window)
	if d.metrics != nil {
		d.metrics.ConfidenceAvgSet(avg)
	}

	if len(d.window) == d.capacity && avg < d.threshold {
		log.Warn().
			Float64("avg_confidence", avg).
			Float64("drift_threshold", d.threshold).
			Int("window_size", d.capacity).
			Msg("model performance degradation detected")
		if d.metrics != nil {
			d.metrics.DriftAlertsInc()
		}
	}
}

// Snapshot returns the current window state without mutating it.
func (d *Drift) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	avg := mean(d.window)
	return Snapshot{
		WindowLen:  len(d.window),
		WindowSize: d.capacity,
		AvgConf:    avg,
		Alerting:   len(d.window) == d.capacity && avg < d.threshold,
	}
}

// Window returns a copy of the current window contents, oldest first.
func (d *Drift) Window() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]float64, len(d.window))
	copy(out, d.window)
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
