package drift_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/driftwatch/internal/baseline"
	"github.com/OldStager01/driftwatch/internal/drift"
	"github.com/OldStager01/driftwatch/pkg/models"
)

func loadBaseline(t *testing.T) *baseline.Baseline {
	t.Helper()
	b, err := baseline.Load()
	require.NoError(t, err)
	return b
}

// windowFromBaseline resamples rows from the baseline itself, so the window
// follows the reference distribution exactly.
func windowFromBaseline(b *baseline.Baseline, n int, seed int64) []models.FeatureRecord {
	rng := rand.New(rand.NewSource(seed))
	columns := make(map[string][]float64, len(b.Features()))
	for _, name := range b.Features() {
		columns[name] = b.Column(name)
	}

	window := make([]models.FeatureRecord, 0, n)
	for i := 0; i < n; i++ {
		row := rng.Intn(b.Samples())
		features := make(map[string]float64, len(columns))
		for name, col := range columns {
			features[name] = col[row]
		}
		window = append(window, models.NewFeatureRecord(features, 0))
	}
	return window
}

func shift(window []models.FeatureRecord, offset float64) []models.FeatureRecord {
	out := make([]models.FeatureRecord, 0, len(window))
	for _, r := range window {
		features := make(map[string]float64, len(r.Features))
		for name, v := range r.Features {
			features[name] = v + offset
		}
		out = append(out, models.NewFeatureRecord(features, r.Prediction))
	}
	return out
}

func TestAnalyzer_EmptyWindow(t *testing.T) {
	a := drift.New(drift.Config{})

	_, err := a.Analyze(loadBaseline(t), nil)

	assert.ErrorIs(t, err, drift.ErrEmptyWindow)
}

func TestAnalyzer_SchemaMismatch(t *testing.T) {
	b := loadBaseline(t)
	a := drift.New(drift.Config{})

	window := windowFromBaseline(b, 20, 1)
	delete(window[7].Features, "petal width (cm)")

	_, err := a.Analyze(b, window)

	assert.ErrorIs(t, err, drift.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "record 7")
}

func TestAnalyzer_NoDriftOnBaselineResample(t *testing.T) {
	b := loadBaseline(t)
	a := drift.New(drift.Config{})

	report, err := a.Analyze(b, windowFromBaseline(b, 100, 7))
	require.NoError(t, err)

	assert.Equal(t, models.VerdictNoDrift, report.Verdict)
	assert.False(t, report.DriftDetected())
	assert.Equal(t, b.Fingerprint(), report.BaselineFingerprint)
	assert.Equal(t, 150, report.BaselineSamples)
	assert.Equal(t, 100, report.CurrentSamples)
	assert.Len(t, report.Features, 4)
}

func TestAnalyzer_DetectsShiftedWindow(t *testing.T) {
	b := loadBaseline(t)
	a := drift.New(drift.Config{})

	// A flat +3 on every feature is several standard deviations for all
	// four columns.
	report, err := a.Analyze(b, shift(windowFromBaseline(b, 100, 7), 3.0))
	require.NoError(t, err)

	assert.Equal(t, models.VerdictDrift, report.Verdict)
	assert.True(t, report.DriftDetected())
	assert.Equal(t, 4, report.DriftedFeatures)
	assert.Equal(t, 1.0, report.DriftShare)
	assert.Len(t, report.DriftedFeatureNames(), 4)

	for _, f := range report.Features {
		assert.True(t, f.Drifted, "feature %s should be drifted", f.Feature)
		assert.Less(t, f.PValue, 0.05)
		assert.InDelta(t, f.BaselineMean+3.0, f.CurrentMean, 0.5)
	}
}

func TestAnalyzer_Deterministic(t *testing.T) {
	b := loadBaseline(t)
	a := drift.New(drift.Config{})
	window := windowFromBaseline(b, 50, 3)

	first, err := a.Analyze(b, window)
	require.NoError(t, err)
	second, err := a.Analyze(b, window)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, firstJSON, secondJSON)
}

func TestAnalyzer_ShareThreshold(t *testing.T) {
	b := loadBaseline(t)
	window := windowFromBaseline(b, 100, 7)

	// Shift only one of four features: below the default 0.5 share.
	for _, r := range window {
		r.Features["sepal width (cm)"] += 5
	}

	report, err := drift.New(drift.Config{}).Analyze(b, window)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictNoDrift, report.Verdict)
	assert.Equal(t, 1, report.DriftedFeatures)

	// A stricter share threshold flips the verdict on the same window.
	strict, err := drift.New(drift.Config{ShareThreshold: 0.25}).Analyze(b, window)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictDrift, strict.Verdict)
}

func TestAnalyzer_PValueShrinksWithShift(t *testing.T) {
	b := loadBaseline(t)
	a := drift.New(drift.Config{})
	window := windowFromBaseline(b, 100, 7)

	small, err := a.Analyze(b, shift(window, 0.3))
	require.NoError(t, err)
	large, err := a.Analyze(b, shift(window, 3.0))
	require.NoError(t, err)

	for i := range small.Features {
		assert.LessOrEqual(t, large.Features[i].PValue, small.Features[i].PValue,
			"feature %s", small.Features[i].Feature)
	}
}

func TestAnalyzer_PValueBounds(t *testing.T) {
	b := loadBaseline(t)
	a := drift.New(drift.Config{})

	report, err := a.Analyze(b, shift(windowFromBaseline(b, 100, 11), 50.0))
	require.NoError(t, err)

	for _, f := range report.Features {
		assert.GreaterOrEqual(t, f.PValue, 0.0)
		assert.LessOrEqual(t, f.PValue, 1.0)
		assert.GreaterOrEqual(t, f.Statistic, 0.0)
		assert.LessOrEqual(t, f.Statistic, 1.0)
	}
}
