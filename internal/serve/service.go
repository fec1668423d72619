// Package serve implements the request-scoped prediction path of the job
// role inference service: input validation, feature construction, model
// scoring, the confidence-based fallback policy, and the per-request
// drift monitor update. It also provides the HTTP surface exposing the
// prediction, health, metrics, and monitoring endpoints.
package serve

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"roleserve/internal/common"
	"roleserve/internal/features"
	"roleserve/internal/model"
	"roleserve/internal/monitor"
)

// ErrValidation marks hard input validation failures. The HTTP layer maps
// it to a client error; every other failure is a server error.
var ErrValidation = errors.New("invalid input")

// Outcome classifies a prediction result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFallbackLowConfidence
	OutcomeFallbackModelAbsent
)

// Wire status strings. The low-confidence status embeds the configured
// threshold, matching what downstream dashboards already parse.
const (
	StatusSuccess     = "Success"
	StatusModelAbsent = "Fallback_Triggered (Model not loaded)"
)

func statusLowConfidence(threshold float64) string {
	return fmt.Sprintf("Fallback_Triggered (Conf < %g)", threshold)
}

// Result is one prediction response.
type Result struct {
	PredictedRole string  `json:"predicted_role"`
	Confidence    float64 `json:"confidence"`
	Status        string  `json:"status"`
	Outcome       Outcome `json:"-"`
}

// MetricsInterface defines the metrics methods the service needs.
type MetricsInterface interface {
	PredictionsInc()
	FallbacksInc()
	ConfidenceObserve(float64)
	ValidationWarningsInc()
}

// Service orchestrates one inference request end to end. The model handle
// is read-only for the lifetime of the process; the drift monitor and the
// metrics sink are the only mutable shared state it touches.
type Service struct {
	handle            model.Handle // nil when no artifact could be loaded
	adapter           features.Adapter
	fallbackThreshold float64
	drift             *monitor.Drift
	metrics           MetricsInterface
}

// NewService creates the prediction service. A nil handle is the explicit
// absent-model state: the service still answers every request with a
// clearly labeled fallback.
func NewService(handle model.Handle, adapter features.Adapter, fallbackThreshold float64, drift *monitor.Drift, metrics MetricsInterface) *Service {
	return &Service{
		handle:            handle,
		adapter:           adapter,
		fallbackThreshold: fallbackThreshold,
		drift:             drift,
		metrics:           metrics,
	}
}

// ModelLoaded reports whether a model artifact is serving.
func (s *Service) ModelLoaded() bool {
	return s.handle != nil
}

// Drift returns the drift monitor backing this service.
func (s *Service) Drift() *monitor.Drift {
	return s.drift
}

// Predict runs one candidate profile through the inference pipeline.
// Validation and feature errors are returned, never converted to
// fallbacks; only the two designed degradation modes (absent model, low
// confidence) produce a fallback result.
func (s *Service) Predict(p features.CandidateProfile) (Result, error) {
	// An unscored fallback must not pollute drift statistics, so the
	// absent-model path skips validation, features and the monitor.
	if s.handle == nil {
		s.metrics.FallbacksInc()
		return Result{
			PredictedRole: common.FallbackLabel,
			Confidence:    0.0,
			Status:        StatusModelAbsent,
			Outcome:       OutcomeFallbackModelAbsent,
		}, nil
	}

	if err := s.validate(p); err != nil {
		return Result{}, err
	}

	vec, err := s.adapter.Vectorize(p)
	if err != nil {
		return Result{}, fmt.Errorf("feature construction failed: %w", err)
	}

	classes := s.handle.Classes()
	proba, err := s.handle.PredictProba(vec)
	if err != nil {
		return Result{}, fmt.Errorf("model prediction failed: %w", err)
	}
	if len(proba) != len(classes) {
		return Result{}, fmt.Errorf("model returned %d probabilities for %d classes", len(proba), len(classes))
	}

	idx := argmax(proba)
	confidence := proba[idx]
	predictedRole := classes[idx]

	// Confidence is a property of the model output, not of the fallback
	// decision: it feeds the monitor before the policy check.
	s.metrics.PredictionsInc()
	s.metrics.ConfidenceObserve(confidence)
	s.drift.Observe(confidence)

	if confidence < s.fallbackThreshold {
		s.metrics.FallbacksInc()
		return Result{
			PredictedRole: common.FallbackLabel,
			Confidence:    confidence,
			Status:        statusLowConfidence(s.fallbackThreshold),
			Outcome:       OutcomeFallbackLowConfidence,
		}, nil
	}

	return Result{
		PredictedRole: predictedRole,
		Confidence:    confidence,
		Status:        StatusSuccess,
		Outcome:       OutcomeSuccess,
	}, nil
}

// validate applies the structural checks. Missing required fields are a
// hard failure; unseen categorical values and suspiciously short skills
// only degrade observability, not availability.
func (s *Service) validate(p features.CandidateProfile) error {
	if p.Skills == "" {
		return fmt.Errorf("%w: skills must not be empty", ErrValidation)
	}
	if p.Qualification == "" {
		return fmt.Errorf("%w: qualification must not be empty", ErrValidation)
	}
	if p.ExperienceLevel == "" {
		return fmt.Errorf("%w: experience_level must not be empty", ErrValidation)
	}

	if _, ok := common.KnownExperienceLevels[p.ExperienceLevel]; !ok {
		log.Warn().Str("experience_level", p.ExperienceLevel).Msg("unseen experience level")
		s.metrics.ValidationWarningsInc()
	}
	if len(p.Skills) < common.MinSkillsLength {
		log.Warn().Str("skills", p.Skills).Msg("potentially malformed skills input (too short)")
		s.metrics.ValidationWarningsInc()
	}

	return nil
}

// argmax returns the index of the maximum value, first occurrence winning
// ties so label selection stays deterministic.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
