// Package drift compares a window of recent serving-time inputs against the
// reference baseline, one two-sample Kolmogorov-Smirnov test per feature.
package drift

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/driftwatch/internal/baseline"
	"github.com/OldStager01/driftwatch/pkg/models"
)

var (
	// ErrSchemaMismatch indicates the window is missing a feature the
	// baseline requires. The run is aborted but the scheduler keeps ticking.
	ErrSchemaMismatch = errors.New("window schema does not match baseline")

	// ErrEmptyWindow indicates Analyze was called with no records at all.
	// Callers are expected to gate on min samples before invoking.
	ErrEmptyWindow = errors.New("analysis window is empty")
)

type Config struct {
	// PThreshold flags a single feature as drifted when its KS p-value
	// falls below it.
	PThreshold float64

	// ShareThreshold turns the dataset verdict to drift once this share of
	// compared features is flagged.
	ShareThreshold float64
}

// Analyzer is a pure comparison function over (baseline, window) pairs.
// It holds thresholds only; identical inputs always produce identical
// reports.
type Analyzer struct {
	config Config
}

func New(cfg Config) *Analyzer {
	if cfg.PThreshold == 0 {
		cfg.PThreshold = 0.05
	}
	if cfg.ShareThreshold == 0 {
		cfg.ShareThreshold = 0.5
	}

	return &Analyzer{config: cfg}
}

// Analyze compares every baseline feature column against the same feature in
// the window. A record missing a required feature aborts with
// ErrSchemaMismatch. ID, timestamp and source are left zero; the caller
// stamps them before persisting.
func (a *Analyzer) Analyze(b *baseline.Baseline, window []models.FeatureRecord) (*models.DriftReport, error) {
	if len(window) == 0 {
		return nil, ErrEmptyWindow
	}

	features := b.Features()
	results := make([]models.FeatureDrift, 0, len(features))
	drifted := 0

	for _, name := range features {
		current, err := column(window, name)
		if err != nil {
			return nil, err
		}

		ref := b.Column(name)
		statistic, pValue := kolmogorovSmirnov(ref, current)

		fd := models.FeatureDrift{
			Feature:      name,
			Statistic:    statistic,
			PValue:       pValue,
			Drifted:      pValue < a.config.PThreshold,
			BaselineMean: stat.Mean(ref, nil),
			CurrentMean:  stat.Mean(current, nil),
		}
		if fd.Drifted {
			drifted++
		}
		results = append(results, fd)
	}

	share := float64(drifted) / float64(len(results))
	verdict := models.VerdictNoDrift
	if share >= a.config.ShareThreshold {
		verdict = models.VerdictDrift
	}

	return &models.DriftReport{
		BaselineFingerprint: b.Fingerprint(),
		BaselineSamples:     b.Samples(),
		CurrentSamples:      len(window),
		Features:            results,
		DriftedFeatures:     drifted,
		DriftShare:          share,
		Verdict:             verdict,
	}, nil
}

func column(window []models.FeatureRecord, name string) ([]float64, error) {
	values := make([]float64, 0, len(window))
	for i, record := range window {
		v, ok := record.Value(name)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is missing feature %q", ErrSchemaMismatch, i, name)
		}
		values = append(values, v)
	}
	return values, nil
}

// kolmogorovSmirnov returns the two-sample KS statistic and its asymptotic
// p-value. Inputs are copied and sorted; callers keep their slices.
func kolmogorovSmirnov(ref, current []float64) (statistic, pValue float64) {
	x := append([]float64(nil), ref...)
	y := append([]float64(nil), current...)
	sort.Float64s(x)
	sort.Float64s(y)

	statistic = stat.KolmogorovSmirnov(x, nil, y, nil)
	pValue = ksPValue(statistic, len(x), len(y))
	return statistic, pValue
}

// ksPValue evaluates the Kolmogorov distribution tail using Stephens'
// effective-sample-size correction.
func ksPValue(d float64, n1, n2 int) float64 {
	if d <= 0 {
		return 1
	}

	ne := float64(n1) * float64(n2) / float64(n1+n2)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * d

	sum := 0.0
	for j := 1; j <= 100; j++ {
		term := 2 * math.Pow(-1, float64(j-1)) * math.Exp(-2*lambda*lambda*float64(j)*float64(j))
		sum += term
		if math.Abs(term) < 1e-10 {
			break
		}
	}

	switch {
	case sum < 0:
		return 0
	case sum > 1:
		return 1
	default:
		return sum
	}
}
