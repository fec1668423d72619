package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"roleserve/internal/cfg"
	"roleserve/internal/features"
	"roleserve/internal/metrics"
	"roleserve/internal/model"
	"roleserve/internal/monitor"
	"roleserve/internal/serve"
	"roleserve/internal/storage"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	artifact, vectorizer := loadModel(c, m)

	drift := monitor.New(monitor.Config{
		WindowSize:     c.WindowSize,
		DriftThreshold: c.DriftThreshold,
	}, m)

	var handle model.Handle
	if artifact != nil {
		handle = artifact
	}
	service := serve.NewService(handle, vectorizer, c.FallbackThreshold, drift, m)

	store := initializeStorage(c)
	var recorder serve.Recorder
	if store != nil {
		defer store.Close()
		recorder = store
	}

	server := serve.NewServer(serve.ServerConfig{
		Port:             c.ListenPort,
		RequestTimeout:   c.RequestTimeout,
		SnapshotInterval: c.SnapshotInterval,
	}, service, artifact, m, prometheus.DefaultGatherer, recorder)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("inference server failed")
			cancel()
		}
	}()

	waitForShutdown(ctx, cancel)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown inference server")
	}
}

// loadModel attempts the one-time artifact load. A failed load leaves the
// service running in the absent-model state: an inference endpoint with no
// model still answers health and metrics and returns a labeled fallback.
func loadModel(c cfg.Settings, m *metrics.Metrics) (*model.Artifact, features.Adapter) {
	artifact, err := model.Load(c.ModelPath)
	if err != nil {
		log.Warn().Err(err).Str("model_path", c.ModelPath).
			Msg("model not loaded, serving fallback responses")
		m.ModelLoadedSet(false)
		return nil, nil
	}

	vectorizer, err := features.NewVectorizer(artifact.Schema())
	if err != nil {
		log.Warn().Err(err).Str("model_path", c.ModelPath).
			Msg("feature schema unusable, serving fallback responses")
		m.ModelLoadedSet(false)
		return nil, nil
	}

	m.ModelLoadedSet(true)
	return artifact, vectorizer
}

// initializeStorage opens the prediction log if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("prediction log initialization failed, continuing without persistence")
		return nil
	}
	return store
}

// waitForShutdown blocks until a shutdown signal arrives or the context ends
func waitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	// Give in-flight requests a moment before Shutdown takes over.
	time.Sleep(100 * time.Millisecond)
}
