// Package metrics provides Prometheus metrics for the NOx prediction
// service. It covers per-band prediction volume, failures and latency,
// transport validation rejections, streaming-session population, and
// emitter queue health, all exposed via the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the prediction service.
type Metrics struct {
	// Prediction metrics
	Predictions       *prometheus.CounterVec   // Successful predictions by band
	PredictionErrors  *prometheus.CounterVec   // Failed predictions by band and reason
	PredictionSeconds *prometheus.HistogramVec // Model invocation latency by band

	// Transport metrics
	ValidationFailures prometheus.Counter // Requests rejected before reaching any model
	StreamSessions     prometheus.Gauge   // Open streaming prediction sessions

	// Model lifecycle metrics
	ModelLoaded      *prometheus.GaugeVec // 1 once the band's model is loaded
	ModelLoadSeconds prometheus.Gauge     // Startup artifact loading time in seconds

	// Emitter metrics
	EmitterPublished  prometheus.Counter // Prediction events published to Kafka
	EmitterDropped    prometheus.Counter // Prediction events dropped on a full queue
	EmitterQueueDepth prometheus.Gauge   // Events waiting in the emitter queue
}

// New creates and registers all metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// testing, where the global registry would collide between cases).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nox_predictions_total",
			Help: "Successful predictions by band",
		}, []string{"band"}),
		PredictionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nox_prediction_errors_total",
			Help: "Failed predictions by band and reason",
		}, []string{"band", "reason"}),
		PredictionSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nox_prediction_seconds",
			Help:    "Model invocation latency in seconds by band",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"band"}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "nox_validation_failures_total",
			Help: "Requests rejected at the transport boundary before reaching any model",
		}),
		StreamSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nox_stream_sessions",
			Help: "Open streaming prediction sessions",
		}),
		ModelLoaded: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nox_model_loaded",
			Help: "1 once the band's model has been loaded",
		}, []string{"band"}),
		ModelLoadSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nox_model_load_seconds",
			Help: "Time spent loading all band artifacts at startup",
		}),
		EmitterPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "nox_emitter_published_total",
			Help: "Prediction events published to the broker",
		}),
		EmitterDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "nox_emitter_dropped_total",
			Help: "Prediction events dropped because the emitter queue was full",
		}),
		EmitterQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nox_emitter_queue_depth",
			Help: "Events waiting in the emitter queue",
		}),
	}
}
