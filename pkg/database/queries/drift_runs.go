package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/OldStager01/driftwatch/pkg/models"
)

// DriftRunRepository is the audit log of completed drift analysis runs.
type DriftRunRepository struct {
	db *sql.DB
}

func NewDriftRunRepository(db *sql.DB) *DriftRunRepository {
	return &DriftRunRepository{db: db}
}

type DriftRunRecord struct {
	ID              int       `json:"id"`
	ReportID        string    `json:"report_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	Source          string    `json:"source"`
	Verdict         string    `json:"verdict"`
	DriftedFeatures int       `json:"drifted_features"`
	DriftShare      float64   `json:"drift_share"`
	CurrentSamples  int       `json:"current_samples"`
	ReportFile      string    `json:"report_file"`
}

func (r *DriftRunRepository) Insert(ctx context.Context, report *models.DriftReport, reportFile string) error {
	query := `
		INSERT INTO drift_runs
			(report_id, generated_at, source, verdict, drifted_features, drift_share, current_samples, report_file)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.GeneratedAt,
		string(report.Source),
		string(report.Verdict),
		report.DriftedFeatures,
		report.DriftShare,
		report.CurrentSamples,
		reportFile,
	)
	return err
}

func (r *DriftRunRepository) GetRecent(ctx context.Context, limit int) ([]DriftRunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, report_id, generated_at, source, verdict, drifted_features, drift_share, current_samples, report_file
		FROM drift_runs
		ORDER BY generated_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []DriftRunRecord
	for rows.Next() {
		var run DriftRunRecord
		err := rows.Scan(
			&run.ID, &run.ReportID, &run.GeneratedAt, &run.Source,
			&run.Verdict, &run.DriftedFeatures, &run.DriftShare,
			&run.CurrentSamples, &run.ReportFile,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type DriftRunStats struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	TotalRuns   int       `json:"total_runs"`
	DriftedRuns int       `json:"drifted_runs"`
	ManualRuns  int       `json:"manual_runs"`
}

func (r *DriftRunRepository) GetStats(ctx context.Context, from, to time.Time) (*DriftRunStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_runs,
			COUNT(*) FILTER (WHERE verdict = 'drift detected') AS drifted_runs,
			COUNT(*) FILTER (WHERE source != 'scheduler') AS manual_runs
		FROM drift_runs
		WHERE generated_at >= $1 AND generated_at <= $2`

	stats := DriftRunStats{From: from, To: to}
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(
		&stats.TotalRuns, &stats.DriftedRuns, &stats.ManualRuns,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
