package simulator

import (
	"math"
	"math/rand"

	"github.com/OldStager01/driftwatch/internal/baseline"
)

// Pattern generates one feature vector per step.
type Pattern interface {
	Sample(rng *rand.Rand) map[string]float64
	Name() string
}

// GaussianPattern draws each feature independently from a normal
// distribution. Negative draws are clamped to their absolute value, so the
// generated measurements stay physically plausible.
type GaussianPattern struct {
	name    string
	means   []float64
	stddevs []float64
}

func (p *GaussianPattern) Sample(rng *rand.Rand) map[string]float64 {
	features := make(map[string]float64, len(baseline.FeatureNames))
	for i, name := range baseline.FeatureNames {
		features[name] = math.Abs(rng.NormFloat64()*p.stddevs[i] + p.means[i])
	}
	return features
}

func (p *GaussianPattern) Name() string {
	return p.name
}

// NormalPattern approximates the baseline's in-distribution traffic.
func NormalPattern() Pattern {
	return &GaussianPattern{
		name:    "normal",
		means:   []float64{5.8, 3.0, 3.7, 1.2},
		stddevs: []float64{0.8, 0.4, 1.7, 0.7},
	}
}

// DriftPattern shifts feature means by several standard deviations to force
// a drift verdict.
func DriftPattern() Pattern {
	return &GaussianPattern{
		name:    "drift",
		means:   []float64{5.8 + 2.5, 3.0 - 1.0, 3.7 + 3.0, 1.2},
		stddevs: []float64{0.8, 0.4, 1.7, 0.7},
	}
}

func ParsePattern(name string) Pattern {
	switch name {
	case "drift":
		return DriftPattern()
	default:
		return NormalPattern()
	}
}
