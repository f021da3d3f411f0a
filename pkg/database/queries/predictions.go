package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OldStager01/driftwatch/pkg/models"
)

// PredictionRepository is the audit log of served predictions. Feature
// vectors are stored as JSONB so the schema survives feature additions.
type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

type PredictionRecord struct {
	ID             int                `json:"id"`
	ObservedAt     time.Time          `json:"observed_at"`
	Features       map[string]float64 `json:"features"`
	PredictedClass int                `json:"predicted_class"`
	PredictedLabel string             `json:"predicted_label"`
}

func (r *PredictionRepository) Insert(ctx context.Context, record models.FeatureRecord, prediction models.Prediction) error {
	features, err := json.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("failed to encode feature vector: %w", err)
	}

	query := `
		INSERT INTO predictions (observed_at, features, predicted_class, predicted_label)
		VALUES ($1, $2, $3, $4)`

	_, err = r.db.ExecContext(ctx, query,
		record.ObservedAt,
		features,
		prediction.ClassID,
		prediction.Class,
	)
	return err
}

func (r *PredictionRepository) GetRecent(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, observed_at, features, predicted_class, predicted_label
		FROM predictions
		ORDER BY observed_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var rec PredictionRecord
		var features []byte
		if err := rows.Scan(&rec.ID, &rec.ObservedAt, &features, &rec.PredictedClass, &rec.PredictedLabel); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(features, &rec.Features); err != nil {
			return nil, fmt.Errorf("failed to decode feature vector: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *PredictionRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM predictions WHERE observed_at >= $1`
	err := r.db.QueryRowContext(ctx, query, since).Scan(&count)
	return count, err
}
