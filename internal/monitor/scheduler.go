// Package monitor drives the drift detection cadence: a periodic ticker and
// the manual trigger endpoints funnel into a single guarded run path.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OldStager01/driftwatch/internal/baseline"
	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/internal/drift"
	"github.com/OldStager01/driftwatch/internal/events"
	"github.com/OldStager01/driftwatch/internal/logger"
	"github.com/OldStager01/driftwatch/internal/metrics"
	"github.com/OldStager01/driftwatch/internal/reportstore"
	"github.com/OldStager01/driftwatch/pkg/models"
)

type Config struct {
	// Interval is the time between scheduled analysis runs.
	Interval time.Duration

	// MinSamples gates a run; snapshots below it skip the cycle.
	MinSamples int

	// RunTimeout bounds a single run. Zero means Interval.
	RunTimeout time.Duration
}

// RunResult describes a completed analysis run.
type RunResult struct {
	Report     *models.DriftReport
	ReportName string
	DataPoints int
	Elapsed    time.Duration
}

// Status is the read-only scheduler view served by the status API.
type Status struct {
	State       models.SchedulerState `json:"state"`
	Interval    time.Duration         `json:"-"`
	NextRun     time.Time             `json:"next_scheduled_run"`
	LastRunAt   time.Time             `json:"last_run_at,omitempty"`
	LastOutcome models.RunOutcome     `json:"last_outcome,omitempty"`
	LastError   string                `json:"last_error,omitempty"`
}

// Scheduler owns the at-most-one-concurrent-run guarantee. The running flag
// is the single point of mutual exclusion between the ticker and the manual
// trigger paths; it is checked-and-set atomically so two triggers can never
// both start a run. The buffer is only ever read through Snapshot, so an
// in-flight analysis never blocks serving.
type Scheduler struct {
	config    Config
	buffer    *buffer.Buffer
	baseline  *baseline.Baseline
	analyzer  *drift.Analyzer
	store     *reportstore.Store
	publisher *events.Publisher

	running atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu          sync.Mutex
	started     bool
	nextRun     time.Time
	lastRunAt   time.Time
	lastOutcome models.RunOutcome
	lastError   string
}

func NewScheduler(cfg Config, buf *buffer.Buffer, base *baseline.Baseline, analyzer *drift.Analyzer, store *reportstore.Store, publisher *events.Publisher) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 300 * time.Second
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = 10
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = cfg.Interval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		config:    cfg,
		buffer:    buf,
		baseline:  base,
		analyzer:  analyzer,
		store:     store,
		publisher: publisher,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the ticker loop. The first cycle runs immediately.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true

	s.wg.Add(1)
	go s.loop()

	logger.Infof("Drift scheduler started (interval=%s, min_samples=%d)", s.config.Interval, s.config.MinSamples)
	return nil
}

// Stop cancels pending ticks and waits for the loop to exit. An in-flight
// run finishes; there is no mid-run cancellation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	s.once.Do(s.cancel)
	s.wg.Wait()

	logger.Info("Drift scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.cycle()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cycle()
		}
	}
}

// cycle is one scheduled run attempt. Every outcome, including rejection and
// failure, leaves the ticker alive; a bad cycle never stops future cycles.
func (s *Scheduler) cycle() {
	s.setNextRun(time.Now().Add(s.config.Interval))

	_, err := s.RunNow(models.RunSourceScheduler)
	switch {
	case err == nil:
	case errors.Is(err, ErrInsufficientData):
		logger.Warnf("Scheduled drift run skipped: %v", err)
	case errors.Is(err, ErrAlreadyRunning):
		logger.Warn("Scheduled drift run rejected, a run is already in progress")
	default:
		logger.Errorf("Scheduled drift run failed: %v", err)
	}
}

// RunNow requests an analysis run on behalf of the given trigger source. If
// a run is already in flight the request is rejected immediately with
// ErrAlreadyRunning, never queued. The gate is released on every exit path.
func (s *Scheduler) RunNow(source models.RunSource) (*RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.DriftRunsTotal.WithLabelValues(string(source), "rejected").Inc()
		s.publisher.RunRejected(source)
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	started := time.Now()
	runID := models.NewUUID()
	result, err := s.execute(runID, source, started)

	elapsed := time.Since(started)
	if elapsed > s.config.RunTimeout {
		logger.WithRun(runID).Warnf("Drift run exceeded its %s budget (took %s)", s.config.RunTimeout, elapsed)
	}

	s.recordOutcome(started, result, err)
	return result, err
}

func (s *Scheduler) execute(runID string, source models.RunSource, started time.Time) (*RunResult, error) {
	log := logger.WithRun(runID)

	window := s.buffer.Snapshot()
	if len(window) < s.config.MinSamples {
		metrics.DriftRunsTotal.WithLabelValues(string(source), "insufficient_data").Inc()
		s.publisher.RunSkipped(runID, len(window), s.config.MinSamples)
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(window), s.config.MinSamples)
	}

	log.Infof("Drift run started (source=%s, window=%d)", source, len(window))
	s.publisher.RunStarted(runID, source, len(window))

	report, err := s.analyzer.Analyze(s.baseline, window)
	if err != nil {
		metrics.DriftRunsTotal.WithLabelValues(string(source), "failed").Inc()
		s.publisher.RunFailed(runID, "analysis failed", err)
		return nil, fmt.Errorf("drift analysis failed: %w", err)
	}

	report.ID = models.ReportID(started)
	report.GeneratedAt = started
	report.Source = source

	name, err := s.store.Save(report)
	if err != nil {
		metrics.DriftRunsTotal.WithLabelValues(string(source), "failed").Inc()
		s.publisher.RunFailed(runID, "report storage failed", err)
		return nil, fmt.Errorf("failed to persist drift report: %w", err)
	}

	elapsed := time.Since(started)
	metrics.DriftRunsTotal.WithLabelValues(string(source), "report_generated").Inc()
	metrics.DriftRunDuration.Observe(elapsed.Seconds())
	metrics.DriftedFeatures.Set(float64(report.DriftedFeatures))
	metrics.DriftShare.Set(report.DriftShare)

	s.publisher.ReportGenerated(runID, report, name)
	if report.DriftDetected() {
		log.Warnf("Drift detected: %d/%d features (%s)", report.DriftedFeatures, len(report.Features), name)
		s.publisher.DriftDetected(runID, report)
	} else {
		log.Infof("Drift run complete, no significant drift (%s)", name)
	}

	return &RunResult{
		Report:     report,
		ReportName: name,
		DataPoints: len(window),
		Elapsed:    elapsed,
	}, nil
}

func (s *Scheduler) recordOutcome(at time.Time, result *RunResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A rejected trigger is contention, not an outcome of a run.
	if errors.Is(err, ErrAlreadyRunning) {
		return
	}

	s.lastRunAt = at
	s.lastError = ""
	switch {
	case err == nil && result != nil:
		s.lastOutcome = models.RunOutcomeReport
	case errors.Is(err, ErrInsufficientData):
		s.lastOutcome = models.RunOutcomeInsufficient
	default:
		s.lastOutcome = models.RunOutcomeFailed
		if err != nil {
			s.lastError = err.Error()
		}
	}
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun = t
}

// State reports whether an analysis run is currently in flight.
func (s *Scheduler) State() models.SchedulerState {
	if s.running.Load() {
		return models.SchedulerRunning
	}
	return models.SchedulerIdle
}

func (s *Scheduler) MinSamples() int {
	return s.config.MinSamples
}

func (s *Scheduler) Interval() time.Duration {
	return s.config.Interval
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		State:       s.stateLocked(),
		Interval:    s.config.Interval,
		NextRun:     s.nextRun,
		LastRunAt:   s.lastRunAt,
		LastOutcome: s.lastOutcome,
		LastError:   s.lastError,
	}
}

func (s *Scheduler) stateLocked() models.SchedulerState {
	if s.running.Load() {
		return models.SchedulerRunning
	}
	return models.SchedulerIdle
}
