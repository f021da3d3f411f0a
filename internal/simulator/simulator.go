// Package simulator generates /predict traffic against a running service:
// an in-distribution phase followed by an optional drifted phase.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/OldStager01/driftwatch/internal/logger"
)

type Config struct {
	// TargetURL is the service base URL, e.g. http://localhost:8000.
	TargetURL string

	// Steps is the number of requests per phase.
	Steps int

	// MinDelay/MaxDelay bound the random pacing between requests.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
}

type Simulator struct {
	config Config
	client *http.Client
	rng    *rand.Rand
}

type predictResponse struct {
	Class   string `json:"class"`
	ClassID int    `json:"class_id"`
	Error   string `json:"error"`
}

func New(cfg Config) *Simulator {
	if cfg.TargetURL == "" {
		cfg.TargetURL = "http://localhost:8000"
	}
	if cfg.Steps <= 0 {
		cfg.Steps = 50
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= cfg.MinDelay {
		cfg.MaxDelay = 500 * time.Millisecond
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// RunPhase sends Steps requests drawn from the pattern, with random pacing
// between them. Individual request failures are counted, not fatal.
func (s *Simulator) RunPhase(ctx context.Context, pattern Pattern) (sent, failed int, err error) {
	logger.Infof("Phase %q: sending %d requests to %s", pattern.Name(), s.config.Steps, s.config.TargetURL)

	for i := 0; i < s.config.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return sent, failed, err
		}

		features := pattern.Sample(s.rng)
		if err := s.post(ctx, features); err != nil {
			failed++
			logger.Warnf("Request %d failed: %v", i+1, err)
		}
		sent++

		delay := s.config.MinDelay + time.Duration(s.rng.Int63n(int64(s.config.MaxDelay-s.config.MinDelay)))
		select {
		case <-ctx.Done():
			return sent, failed, ctx.Err()
		case <-time.After(delay):
		}
	}

	logger.Infof("Phase %q complete: %d sent, %d failed", pattern.Name(), sent, failed)
	return sent, failed, nil
}

// TriggerReport requests an immediate drift analysis run.
func (s *Simulator) TriggerReport(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TargetURL+"/monitor/trigger_now", nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	logger.Infof("Trigger response (%d): %s", resp.StatusCode, bytes.TrimSpace(body))
	return nil
}

func (s *Simulator) post(ctx context.Context, features map[string]float64) error {
	payload, err := json.Marshal(features)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TargetURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Error)
	}

	logger.Debugf("Predicted %s (%d)", decoded.Class, decoded.ClassID)
	return nil
}
