package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"roleserve/internal/features"
	"roleserve/internal/model"
)

// ServerMetrics extends the service metrics with the request-level
// signals only the HTTP layer observes.
type ServerMetrics interface {
	MetricsInterface
	RequestErrorsInc()
	PredictDurationObserve(float64)
}

// Recorder persists served predictions for offline analysis. Recording is
// strictly off the response path; failures are logged, never surfaced.
type Recorder interface {
	RecordPrediction(p features.CandidateProfile, r Result) error
}

// ServerConfig carries the HTTP-layer knobs.
type ServerConfig struct {
	Port             int
	RequestTimeout   time.Duration
	SnapshotInterval time.Duration
}

// Server exposes the prediction service over HTTP.
type Server struct {
	service  *Service
	artifact *model.Artifact // nil when serving without a model
	metrics  ServerMetrics
	recorder Recorder
	interval time.Duration
	server   *http.Server
}

// NewServer creates the HTTP server. The artifact may be nil (absent
// model); the recorder may be nil (no prediction log configured). The
// gatherer backs the /metrics exposition, letting tests pass an isolated
// registry.
func NewServer(config ServerConfig, service *Service, artifact *model.Artifact, m ServerMetrics, gatherer prometheus.Gatherer, recorder Recorder) *Server {
	s := &Server{
		service:  service,
		artifact: artifact,
		metrics:  m,
		recorder: recorder,
		interval: config.SnapshotInterval,
	}
	if s.interval <= 0 {
		s.interval = 2 * time.Second
	}

	requestTimeout := config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/model/info", s.handleModelInfo)
	mux.HandleFunc("/monitor/ws", s.handleMonitorWS)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Handler returns the root handler, used by httptest in tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting inference server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	defer func() {
		s.metrics.PredictDurationObserve(time.Since(start).Seconds())
	}()

	var profile features.CandidateProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		s.metrics.RequestErrorsInc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := s.service.Predict(profile)
	if err != nil {
		s.metrics.RequestErrorsInc()
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.recorder != nil {
		if err := s.recorder.RecordPrediction(profile, result); err != nil {
			log.Warn().Err(err).Msg("failed to record prediction")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": s.service.ModelLoaded(),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if s.artifact == nil {
		writeJSON(w, http.StatusOK, map[string]any{"model_loaded": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model_loaded":  true,
		"version":       s.artifact.Version(),
		"trained_at":    s.artifact.TrainedAt(),
		"classes":       s.artifact.Classes(),
		"feature_width": s.artifact.Schema().Width(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
