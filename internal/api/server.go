// Package api is the HTTP and WebSocket transport for the prediction
// service: one POST route per band, a streaming endpoint, health and
// model-info routes, and the Prometheus scrape endpoint, behind an
// explicit CORS allow-list.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/emit"
	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

// Config holds the transport options.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	StreamEnabled  bool
}

// Publisher is the narrow emitter view the transport consumes.
type Publisher interface {
	Publish(event emit.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(emit.Event) {}

// MetricsInterface is the narrow metrics view the transport consumes.
type MetricsInterface interface {
	ValidationFailuresInc()
	StreamSessionsAdd(delta float64)
}

type noopMetrics struct{}

func (noopMetrics) ValidationFailuresInc()    {}
func (noopMetrics) StreamSessionsAdd(float64) {}

// Server serves the prediction API.
type Server struct {
	cfg       Config
	svc       *nox.Service
	features  *nox.FeatureRegistry
	models    *nox.ModelRegistry
	publisher Publisher
	metrics   MetricsInterface
	upgrader  websocket.Upgrader
	srv       *http.Server
	started   time.Time
}

// New wires the routes and middleware. The same parametrized handler
// serves all three band routes; the band is fixed at registration.
func New(cfg Config, svc *nox.Service, features *nox.FeatureRegistry, models *nox.ModelRegistry, publisher Publisher, m MetricsInterface) *Server {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if m == nil {
		m = noopMetrics{}
	}

	s := &Server{
		cfg:       cfg,
		svc:       svc,
		features:  features,
		models:    models,
		publisher: publisher,
		metrics:   m,
		started:   time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := mux.NewRouter()
	for _, band := range nox.Bands() {
		r.HandleFunc("/predict_"+band.String(), s.handlePredict(band)).Methods(http.MethodPost)
	}
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if cfg.StreamEnabled {
		r.HandleFunc("/predict_stream", s.handleStream).Methods(http.MethodGet)
	}

	var handler http.Handler = r
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(handler)
	if len(cfg.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
			handlers.AllowCredentials(),
		)(handler)
	}
	handler = requestLogger(handler)

	s.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	log.Info().
		Str("addr", s.srv.Addr).
		Strs("origins", s.cfg.AllowedOrigins).
		Bool("stream", s.cfg.StreamEnabled).
		Msg("starting prediction server")
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the fully wired handler chain. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// checkOrigin admits non-browser clients (no Origin header), same-host
// requests, and the configured allow-list.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Msg(fmt.Sprint(v...))
}
