package nox

import "fmt"

// Router resolves a band onto its (feature order, model) pair. It has
// no side effects and no fallback: a band that cannot serve fails
// rather than borrowing another band's model.
type Router struct {
	features *FeatureRegistry
	models   *ModelRegistry
}

// NewRouter wires the two registries together.
func NewRouter(features *FeatureRegistry, models *ModelRegistry) *Router {
	return &Router{features: features, models: models}
}

// Resolve returns the pair serving the band.
func (rt *Router) Resolve(b Band) (FeatureOrder, Model, error) {
	order, err := rt.features.FeaturesFor(b)
	if err != nil {
		return nil, nil, err
	}
	mdl, err := rt.models.ModelFor(b)
	if err != nil {
		return nil, nil, err
	}
	return order, mdl, nil
}

// Verify cross-checks each band's feature order against the width its
// model expects. Called once at startup so a drifted artifact pair
// fails the boot instead of the first request.
func (rt *Router) Verify() error {
	for _, band := range Bands() {
		order, mdl, err := rt.Resolve(band)
		if err != nil {
			return err
		}
		if n := mdl.NumFeatures(); n > 0 && n != len(order) {
			return fmt.Errorf("%w: band %s model expects %d features, metadata lists %d",
				ErrBadConfig, band, n, len(order))
		}
	}
	return nil
}
