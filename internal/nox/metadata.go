package nox

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FeatureOrder is the ordered feature-name sequence one model was
// trained with. Order is load-bearing: the projection step reads fields
// in exactly this sequence, and a permutation silently changes the
// prediction rather than failing.
type FeatureOrder []string

// Validate checks the order's shape and that every name is a reading
// field. Loaders call it so bad artifacts fail the process start.
func (o FeatureOrder) Validate() error {
	if len(o) == 0 {
		return errors.New("empty feature list")
	}
	for _, name := range o {
		if !IsField(name) {
			return fmt.Errorf("unknown feature %q", name)
		}
	}
	return nil
}

// BandMetadata is the feature-metadata document the training pipeline
// exports next to each model blob.
type BandMetadata struct {
	Features     []string `json:"features"`
	ModelVersion string   `json:"model_version,omitempty"`
	TrainedAt    string   `json:"trained_at,omitempty"`
}

func decodeBandMetadata(raw []byte) (*BandMetadata, error) {
	var meta BandMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}
