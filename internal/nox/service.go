package nox

import (
	"context"
	"fmt"
	"math"
	"time"
)

// MetricsInterface is the narrow metrics view the service consumes.
type MetricsInterface interface {
	PredictionsInc(band string)
	PredictionErrorsInc(band, reason string)
	PredictionSecondsObserve(band string, seconds float64)
}

// Error-reason labels for the prediction error counter.
const (
	reasonBand      = "band"
	reasonMismatch  = "mismatch"
	reasonInference = "inference"
)

type noopMetrics struct{}

func (noopMetrics) PredictionsInc(string)                    {}
func (noopMetrics) PredictionErrorsInc(string, string)       {}
func (noopMetrics) PredictionSecondsObserve(string, float64) {}

// PredictionResult carries the predicted NOx concentration and the band
// whose model produced it.
type PredictionResult struct {
	NOx  float64 `json:"nox_pred"`
	Band Band    `json:"band"`
}

// Service turns a sensor reading into a NOx prediction for one band. It
// holds no per-request state: the router and registries behind it are
// read-only after startup, so one Service serves all requests
// concurrently.
type Service struct {
	router  *Router
	metrics MetricsInterface
}

// NewService wires the router and an optional metrics sink.
func NewService(router *Router, metrics MetricsInterface) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{router: router, metrics: metrics}
}

// Predict projects reading onto the band's trained feature order and
// runs the band's model. Fields are read in exactly the order the model
// was trained with; a permutation would silently shift every prediction
// rather than fail, so the projection below never re-sorts.
func (s *Service) Predict(ctx context.Context, reading SensorReading, band Band) (PredictionResult, error) {
	order, mdl, err := s.router.Resolve(band)
	if err != nil {
		s.metrics.PredictionErrorsInc(band.String(), reasonBand)
		return PredictionResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return PredictionResult{}, err
	}

	vector := make([]float64, len(order))
	for i, name := range order {
		v, ok := reading.Value(name)
		if !ok {
			s.metrics.PredictionErrorsInc(band.String(), reasonMismatch)
			return PredictionResult{}, fmt.Errorf("%w: band %s expects field %q", ErrFeatureMismatch, band, name)
		}
		vector[i] = v
	}

	start := time.Now()
	y, err := mdl.Predict(vector)
	s.metrics.PredictionSecondsObserve(band.String(), time.Since(start).Seconds())
	if err != nil {
		s.metrics.PredictionErrorsInc(band.String(), reasonInference)
		return PredictionResult{}, fmt.Errorf("%w: band %s: %v", ErrInference, band, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		s.metrics.PredictionErrorsInc(band.String(), reasonInference)
		return PredictionResult{}, fmt.Errorf("%w: band %s returned non-finite value", ErrInference, band)
	}

	s.metrics.PredictionsInc(band.String())
	return PredictionResult{NOx: y, Band: band}, nil
}
