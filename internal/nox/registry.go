package nox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/artifact"
)

// Model is the minimal inference capability the service needs from a
// loaded regression model. Implementations must be safe for concurrent
// Predict calls; the registries share one instance across all requests.
type Model interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
	Name() string
}

// ModelDecoder turns a serialized model blob into a usable Model. The
// concrete decoder is injected so the core never depends on the
// serialization format.
type ModelDecoder func(raw []byte) (Model, error)

// FeatureRegistry holds each band's trained feature order. Loaded once
// at startup; lookups afterwards are read-only and O(1).
type FeatureRegistry struct {
	orders map[Band]FeatureOrder
	meta   map[Band]BandMetadata
}

// NewFeatureRegistry builds a registry from explicit per-band orders.
// Used by tests and by callers that source orders elsewhere.
func NewFeatureRegistry(orders map[Band]FeatureOrder) *FeatureRegistry {
	reg := &FeatureRegistry{
		orders: make(map[Band]FeatureOrder, len(orders)),
		meta:   make(map[Band]BandMetadata, len(orders)),
	}
	for band, order := range orders {
		reg.orders[band] = append(FeatureOrder(nil), order...)
		reg.meta[band] = BandMetadata{Features: order}
	}
	return reg
}

// LoadFeatureRegistry fetches and validates every band's metadata
// artifact. Any missing or malformed document fails the whole load;
// there is no partial-availability mode.
func LoadFeatureRegistry(ctx context.Context, store artifact.Store) (*FeatureRegistry, error) {
	reg := &FeatureRegistry{
		orders: make(map[Band]FeatureOrder),
		meta:   make(map[Band]BandMetadata),
	}
	for _, band := range Bands() {
		raw, err := store.Metadata(ctx, band.MetadataFile())
		if err != nil {
			return nil, fmt.Errorf("%w: metadata for band %s: %v", ErrBadConfig, band, err)
		}
		meta, err := decodeBandMetadata(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata for band %s: %v", ErrBadConfig, band, err)
		}
		order := FeatureOrder(meta.Features)
		if err := order.Validate(); err != nil {
			return nil, fmt.Errorf("%w: metadata for band %s: %v", ErrBadConfig, band, err)
		}
		reg.orders[band] = order
		reg.meta[band] = *meta
		log.Info().
			Str("band", band.String()).
			Strs("features", meta.Features).
			Msg("feature order loaded")
	}
	return reg, nil
}

// FeaturesFor returns the band's trained feature order. Callers get a
// copy: the stored order must stay exactly as trained, and an aliased
// slice would let a caller permute it under every later request.
func (r *FeatureRegistry) FeaturesFor(b Band) (FeatureOrder, error) {
	order, ok := r.orders[b]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBand, string(b))
	}
	return append(FeatureOrder(nil), order...), nil
}

// MetadataFor returns the band's metadata document as loaded.
func (r *FeatureRegistry) MetadataFor(b Band) (BandMetadata, error) {
	meta, ok := r.meta[b]
	if !ok {
		return BandMetadata{}, fmt.Errorf("%w: %q", ErrUnknownBand, string(b))
	}
	return meta, nil
}

// ModelRegistry holds each band's deserialized model. Loaded once at
// startup; the models are immutable from the caller's perspective and
// shared across concurrent requests.
type ModelRegistry struct {
	models map[Band]Model
}

// NewModelRegistry builds a registry from explicit per-band models.
func NewModelRegistry(models map[Band]Model) *ModelRegistry {
	reg := &ModelRegistry{models: make(map[Band]Model, len(models))}
	for band, mdl := range models {
		reg.models[band] = mdl
	}
	return reg
}

// LoadModelRegistry fetches and deserializes every band's model
// artifact. Any absent or undecodable blob fails the whole load.
func LoadModelRegistry(ctx context.Context, store artifact.Store, decode ModelDecoder) (*ModelRegistry, error) {
	reg := &ModelRegistry{models: make(map[Band]Model)}
	for _, band := range Bands() {
		raw, err := store.Model(ctx, band.ModelFile())
		if err != nil {
			return nil, fmt.Errorf("%w: model for band %s: %v", ErrBadConfig, band, err)
		}
		start := time.Now()
		mdl, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: deserialize model for band %s: %v", ErrBadConfig, band, err)
		}
		reg.models[band] = mdl
		log.Info().
			Str("band", band.String()).
			Str("model", mdl.Name()).
			Int("features", mdl.NumFeatures()).
			Dur("elapsed", time.Since(start)).
			Msg("model loaded")
	}
	return reg, nil
}

// ModelFor returns the band's loaded model.
func (r *ModelRegistry) ModelFor(b Band) (Model, error) {
	mdl, ok := r.models[b]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBand, string(b))
	}
	return mdl, nil
}
