package model

import (
	"context"
	"sync"

	"github.com/OldStager01/driftwatch/pkg/models"
)

// MockClassifier returns a fixed result or error for handler tests.
type MockClassifier struct {
	mu       sync.Mutex
	result   models.Prediction
	err      error
	calls    int
	features []string
}

type MockClassifierConfig struct {
	Result   models.Prediction
	Err      error
	Features []string
}

func NewMockClassifier(cfg MockClassifierConfig) *MockClassifier {
	features := cfg.Features
	if len(features) == 0 {
		features = []string{"f1", "f2"}
	}
	return &MockClassifier{
		result:   cfg.Result,
		err:      cfg.Err,
		features: features,
	}
}

func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClassifier) Predict(ctx context.Context, features map[string]float64) (models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return models.Prediction{}, m.err
	}
	return m.result, nil
}

func (m *MockClassifier) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *MockClassifier) Name() string {
	return "mock"
}
