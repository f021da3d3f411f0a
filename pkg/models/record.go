package models

import "time"

// FeatureRecord is a single serving-time observation: the feature values a
// prediction was served from, plus the predicted class id. Records are
// immutable after construction; the buffer owns them once appended.
type FeatureRecord struct {
	Features   map[string]float64 `json:"features"`
	Prediction int                `json:"prediction"`
	ObservedAt time.Time          `json:"observed_at"`
}

func NewFeatureRecord(features map[string]float64, prediction int) FeatureRecord {
	copied := make(map[string]float64, len(features))
	for name, value := range features {
		copied[name] = value
	}

	return FeatureRecord{
		Features:   copied,
		Prediction: prediction,
		ObservedAt: time.Now(),
	}
}

// Value returns the named feature value and whether it is present.
func (r FeatureRecord) Value(name string) (float64, bool) {
	v, ok := r.Features[name]
	return v, ok
}
