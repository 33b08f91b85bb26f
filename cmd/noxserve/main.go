package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/api"
	"github.com/virajparmaj/turbine-nox-wise/internal/artifact"
	"github.com/virajparmaj/turbine-nox-wise/internal/cfg"
	"github.com/virajparmaj/turbine-nox-wise/internal/emit"
	"github.com/virajparmaj/turbine-nox-wise/internal/metrics"
	"github.com/virajparmaj/turbine-nox-wise/internal/model"
	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c.LogLevel)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	store, closeStore := initializeArtifactStore(c)
	if closeStore != nil {
		defer closeStore()
	}

	features, models, err := loadArtifacts(ctx, store, m)
	if err != nil {
		log.Fatal().Err(err).Msg("artifact loading failed")
	}

	router := nox.NewRouter(features, models)
	if err := router.Verify(); err != nil {
		log.Fatal().Err(err).Msg("band routing verification failed")
	}

	svc := nox.NewService(router, mw)

	emitter := emit.New(emit.Config{
		Enabled:   c.EmitterEnabled(),
		Brokers:   c.KafkaBrokers,
		Topic:     c.KafkaTopic,
		QueueSize: c.EmitterQueueSize,
	}, mw)
	emitter.Start(ctx)

	server := api.New(api.Config{
		ListenAddr:     c.ListenAddr,
		AllowedOrigins: c.AllowedOrigins,
		StreamEnabled:  c.StreamEnabled,
	}, svc, features, models, emitter, mw)

	startServer(server, cancel)

	waitForShutdown(ctx, c, server, emitter)
}

// setupLogging applies the configured level globally. Unparseable levels
// fall back to info so a typo never silences the process.
func setupLogging(logLevel string) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// initializeArtifactStore picks the artifact backend from configuration:
// a remote registry (optionally cached on disk) when a base URL is set,
// a local directory otherwise. Validation guarantees one of the two.
func initializeArtifactStore(c cfg.Settings) (artifact.Store, func()) {
	if c.ArtifactsBaseURL == "" {
		log.Info().Str("dir", c.ArtifactsDir).Msg("loading artifacts from local directory")
		return artifact.NewDir(c.ArtifactsDir), nil
	}

	remote := artifact.NewHTTP(c.ArtifactsBaseURL, c.ArtifactsFetchTimeout)
	if c.ArtifactsCachePath == "" {
		log.Info().Str("base_url", c.ArtifactsBaseURL).Msg("loading artifacts from remote registry")
		return remote, nil
	}

	// The cache path is validated configuration; failing to open it is
	// as fatal as any other bad setting.
	cache, err := artifact.NewCache(remote, c.ArtifactsCachePath)
	if err != nil {
		log.Fatal().Err(err).Str("cache_path", c.ArtifactsCachePath).Msg("artifact cache open failed")
	}
	log.Info().
		Str("base_url", c.ArtifactsBaseURL).
		Str("cache_path", c.ArtifactsCachePath).
		Msg("loading artifacts from remote registry with local cache")
	return cache, func() {
		if err := cache.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close artifact cache")
		}
	}
}

// loadArtifacts loads every band's feature order and model and records
// load metrics. Any failure aborts startup: the service never comes up
// with a partial band set.
func loadArtifacts(ctx context.Context, store artifact.Store, m *metrics.Metrics) (*nox.FeatureRegistry, *nox.ModelRegistry, error) {
	start := time.Now()

	features, err := nox.LoadFeatureRegistry(ctx, store)
	if err != nil {
		return nil, nil, err
	}

	models, err := nox.LoadModelRegistry(ctx, store, func(raw []byte) (nox.Model, error) {
		return model.FromBytes(raw)
	})
	if err != nil {
		return nil, nil, err
	}

	m.ModelLoadSeconds.Set(time.Since(start).Seconds())
	for _, b := range nox.Bands() {
		m.ModelLoaded.WithLabelValues(b.String()).Set(1)
	}
	return features, models, nil
}

// startServer runs the HTTP server in the background and cancels the
// root context if it fails, so main shuts everything else down.
func startServer(server *api.Server, cancel context.CancelFunc) {
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("prediction server failed")
			cancel()
		}
	}()
}

// waitForShutdown blocks until a signal or context cancellation, then
// stops the server and drains the emitter within the shutdown budget.
func waitForShutdown(ctx context.Context, c cfg.Settings, server *api.Server, emitter *emit.Emitter) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := emitter.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("emitter shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
