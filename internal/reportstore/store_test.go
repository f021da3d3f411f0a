package reportstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/driftwatch/internal/reportstore"
	"github.com/OldStager01/driftwatch/pkg/models"
)

func testReport(id string, source models.RunSource) *models.DriftReport {
	return &models.DriftReport{
		ID:                  id,
		GeneratedAt:         time.Now(),
		Source:              source,
		BaselineFingerprint: "abc123",
		BaselineSamples:     150,
		CurrentSamples:      42,
		Features: []models.FeatureDrift{
			{Feature: "sepal length (cm)", Statistic: 0.12, PValue: 0.44, BaselineMean: 5.8, CurrentMean: 5.9},
			{Feature: "sepal width (cm)", Statistic: 0.61, PValue: 0.001, Drifted: true, BaselineMean: 3.0, CurrentMean: 4.2},
		},
		DriftedFeatures: 1,
		DriftShare:      0.5,
		Verdict:         models.VerdictDrift,
	}
}

func newStore(t *testing.T) (*reportstore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := reportstore.New(reportstore.Config{Dir: dir})
	require.NoError(t, err)
	return store, dir
}

func TestStore_SaveWritesReportAndLatest(t *testing.T) {
	store, dir := newStore(t)

	name, err := store.Save(testReport("20260101_120000", models.RunSourceScheduler))
	require.NoError(t, err)
	assert.Equal(t, "drift_report_20260101_120000.html", name)

	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	latest, err := os.ReadFile(filepath.Join(dir, "drift_report_latest.html"))
	require.NoError(t, err)

	assert.Equal(t, stored, latest)
	assert.Contains(t, string(stored), "drift detected")
	assert.Contains(t, string(stored), "sepal width (cm)")
}

func TestStore_SaveLeavesNoTempDebris(t *testing.T) {
	store, dir := newStore(t)

	_, err := store.Save(testReport("20260101_120000", models.RunSourceScheduler))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // the report and the latest pointer
}

func TestStore_FailedWriteLeavesLatestIntact(t *testing.T) {
	store, dir := newStore(t)

	_, err := store.Save(testReport("20260101_120000", models.RunSourceScheduler))
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dir, "drift_report_latest.html"))
	require.NoError(t, err)

	// A directory squatting on the target name makes the rename fail
	// before the latest pointer is touched.
	blocked := testReport("20260101_130000", models.RunSourceScheduler)
	require.NoError(t, os.Mkdir(filepath.Join(dir, reportstore.FileName(blocked)), 0o755))

	_, err = store.Save(blocked)
	require.ErrorIs(t, err, reportstore.ErrStorageFailure)

	after, err := os.ReadFile(filepath.Join(dir, "drift_report_latest.html"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		source   models.RunSource
		expected string
	}{
		{name: "scheduler run", source: models.RunSourceScheduler, expected: "drift_report_20260101_120000.html"},
		{name: "api trigger", source: models.RunSourceTrigger, expected: "drift_report_20260101_120000.html"},
		{name: "manual run carries prefix", source: models.RunSourceManual, expected: "drift_report_manual_20260101_120000.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := testReport("20260101_120000", tt.source)
			assert.Equal(t, tt.expected, reportstore.FileName(report))
		})
	}
}

func TestStore_ListRecent(t *testing.T) {
	store, _ := newStore(t)

	for _, id := range []string{"20260101_100000", "20260101_110000", "20260101_120000"} {
		_, err := store.Save(testReport(id, models.RunSourceScheduler))
		require.NoError(t, err)
	}

	reports, err := store.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Newest first, latest pointer excluded.
	assert.Equal(t, "drift_report_20260101_120000.html", reports[0].Name)
	assert.Equal(t, "drift_report_20260101_110000.html", reports[1].Name)
	for _, r := range reports {
		assert.NotEqual(t, "drift_report_latest.html", r.Name)
	}
}

func TestStore_ListRecentEmptyDirectory(t *testing.T) {
	store, _ := newStore(t)

	reports, err := store.ListRecent(10)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestStore_LatestInfo(t *testing.T) {
	store, _ := newStore(t)

	_, ok := store.LatestInfo()
	assert.False(t, ok)

	_, err := store.Save(testReport("20260101_120000", models.RunSourceScheduler))
	require.NoError(t, err)

	info, ok := store.LatestInfo()
	require.True(t, ok)
	assert.Equal(t, "drift_report_latest.html", info.Name)
	assert.Greater(t, info.Size, int64(0))
}

func TestStore_Resolve(t *testing.T) {
	store, dir := newStore(t)

	name, err := store.Save(testReport("20260101_120000", models.RunSourceScheduler))
	require.NoError(t, err)

	path, err := store.Resolve(name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name), path)
}

func TestStore_ResolveRejectsBadNames(t *testing.T) {
	store, _ := newStore(t)

	tests := []struct {
		name  string
		input string
	}{
		{name: "path traversal", input: "../../../etc/passwd"},
		{name: "absolute path", input: "/etc/passwd"},
		{name: "wrong prefix", input: "report.html"},
		{name: "wrong extension", input: "drift_report_x.txt"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Resolve(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestStore_ResolveMissingReport(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Resolve("drift_report_20990101_000000.html")
	assert.ErrorIs(t, err, reportstore.ErrReportNotFound)
}

func TestStore_URL(t *testing.T) {
	dir := t.TempDir()

	relative, err := reportstore.New(reportstore.Config{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "/reports/drift_report_x.html", relative.URL("drift_report_x.html"))

	absolute, err := reportstore.New(reportstore.Config{Dir: dir, BaseURL: "http://localhost:8000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/reports/drift_report_x.html", absolute.URL("drift_report_x.html"))
}
