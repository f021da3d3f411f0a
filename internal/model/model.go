// Package model holds the in-process classifier serving /predict. The model
// is fitted once at startup from the reference baseline and injected where
// needed; nothing else in the service depends on how predictions are made.
package model

import (
	"context"
	"errors"

	"github.com/OldStager01/driftwatch/pkg/models"
)

var (
	ErrPredictionFailed = errors.New("prediction failed")
	ErrMissingFeature   = errors.New("feature vector is missing a required feature")
)

// Classifier maps a feature vector to a class. Implementations must be safe
// for concurrent use; the serving path calls Predict from many goroutines.
type Classifier interface {
	// Predict classifies a single feature vector.
	Predict(ctx context.Context, features map[string]float64) (models.Prediction, error)

	// Features returns the required feature names in schema order.
	Features() []string

	// Name identifies the model type for status and logs.
	Name() string
}
