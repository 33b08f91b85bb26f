// Package model loads serialized XGBoost ensembles and evaluates them
// in process with pure-Go tree traversal.
package model

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/dmitryikh/leaves"
)

// Ensemble wraps a loaded gradient-boosted tree model. Tree evaluation
// touches no shared state, so one Ensemble is safe for concurrent
// Predict calls.
type Ensemble struct {
	trees *leaves.Ensemble
}

// FromBytes deserializes an XGBoost binary model blob as written by
// Booster.save_model. Only single-output regression models are
// accepted.
func FromBytes(raw []byte) (*Ensemble, error) {
	trees, err := leaves.XGEnsembleFromReader(bufio.NewReader(bytes.NewReader(raw)), true)
	if err != nil {
		return nil, fmt.Errorf("load xgboost model: %w", err)
	}
	if n := trees.NRawOutputGroups(); n != 1 {
		return nil, fmt.Errorf("load xgboost model: want single-output regression, got %d output groups", n)
	}
	return &Ensemble{trees: trees}, nil
}

// Predict evaluates the ensemble on one feature vector. The vector
// width must equal the width the model was trained with; PredictSingle
// silently returns zero on short input, so the check happens here.
func (e *Ensemble) Predict(features []float64) (float64, error) {
	if n := e.trees.NFeatures(); len(features) != n {
		return 0, fmt.Errorf("model expects %d features, got %d", n, len(features))
	}
	return e.trees.PredictSingle(features, 0), nil
}

// NumFeatures returns the feature-vector width the model was trained
// with.
func (e *Ensemble) NumFeatures() int { return e.trees.NFeatures() }

// NumTrees returns the number of boosted trees in the ensemble.
func (e *Ensemble) NumTrees() int { return e.trees.NEstimators() }

// Name returns the underlying booster name.
func (e *Ensemble) Name() string { return e.trees.Name() }
