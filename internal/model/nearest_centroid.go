package model

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/driftwatch/internal/baseline"
	"github.com/OldStager01/driftwatch/pkg/models"
)

// NearestCentroid classifies by distance to per-class feature centroids,
// z-score scaled by the pooled per-feature standard deviation. Fitted once
// from the baseline; immutable afterwards, so Predict needs no locking.
type NearestCentroid struct {
	features  []string
	classes   []string
	centroids [][]float64 // class -> feature
	means     []float64
	stddevs   []float64
}

// FitNearestCentroid computes per-class centroids from the baseline rows.
func FitNearestCentroid(b *baseline.Baseline) (*NearestCentroid, error) {
	features := b.Features()
	classes := b.Classes()
	labels := b.Labels()

	if len(features) == 0 || len(classes) == 0 || len(labels) == 0 {
		return nil, fmt.Errorf("baseline has no data to fit on")
	}

	means := make([]float64, len(features))
	stddevs := make([]float64, len(features))
	columns := make([][]float64, len(features))
	for i, name := range features {
		col := b.Column(name)
		if len(col) != len(labels) {
			return nil, fmt.Errorf("baseline column %q has %d rows, expected %d", name, len(col), len(labels))
		}
		columns[i] = col
		means[i] = stat.Mean(col, nil)
		stddevs[i] = stat.StdDev(col, nil)
		if stddevs[i] == 0 {
			stddevs[i] = 1
		}
	}

	centroids := make([][]float64, len(classes))
	counts := make([]int, len(classes))
	for class := range centroids {
		centroids[class] = make([]float64, len(features))
	}
	for row, class := range labels {
		counts[class]++
		for i := range features {
			centroids[class][i] += columns[i][row]
		}
	}
	for class, count := range counts {
		if count == 0 {
			return nil, fmt.Errorf("baseline class %q has no rows", classes[class])
		}
		for i := range features {
			centroids[class][i] /= float64(count)
		}
	}

	return &NearestCentroid{
		features:  features,
		classes:   classes,
		centroids: centroids,
		means:     means,
		stddevs:   stddevs,
	}, nil
}

func (m *NearestCentroid) Predict(ctx context.Context, features map[string]float64) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}

	vector := make([]float64, len(m.features))
	for i, name := range m.features {
		v, ok := features[name]
		if !ok {
			return models.Prediction{}, fmt.Errorf("%w: %q", ErrMissingFeature, name)
		}
		vector[i] = (v - m.means[i]) / m.stddevs[i]
	}

	best := -1
	bestDist := math.Inf(1)
	for class, centroid := range m.centroids {
		dist := 0.0
		for i, v := range vector {
			scaled := (centroid[i] - m.means[i]) / m.stddevs[i]
			d := v - scaled
			dist += d * d
		}
		if dist < bestDist {
			bestDist = dist
			best = class
		}
	}

	if best < 0 {
		return models.Prediction{}, ErrPredictionFailed
	}

	return models.Prediction{ClassID: best, Class: m.classes[best]}, nil
}

func (m *NearestCentroid) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *NearestCentroid) Name() string {
	return "nearest_centroid"
}
