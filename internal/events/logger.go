package events

import (
	"context"
	"errors"
	"time"

	"github.com/OldStager01/driftwatch/internal/logger"
	"github.com/OldStager01/driftwatch/internal/resilience"
	"github.com/OldStager01/driftwatch/pkg/database"
	"github.com/OldStager01/driftwatch/pkg/database/queries"
	"github.com/OldStager01/driftwatch/pkg/models"
)

const persistTimeout = 5 * time.Second

// EventLogger drains the event bus into the structured log and, when the
// database audit sink is enabled, into Postgres. Database writes go through
// a circuit breaker so a dead database never backs up the bus.
type EventLogger struct {
	predictions *queries.PredictionRepository
	driftRuns   *queries.DriftRunRepository
	breaker     *resilience.CircuitBreaker
	eventChan   <-chan *models.Event
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewEventLogger(db *database.DB, breaker *resilience.CircuitBreaker, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())

	l := &EventLogger{
		breaker:   breaker,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
	if db != nil {
		l.predictions = queries.NewPredictionRepository(db.DB)
		l.driftRuns = queries.NewDriftRunRepository(db.DB)
	}
	return l
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"run_id":     event.RunID,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	switch event.Type {
	case models.EventTypePredictionServed:
		l.persistPrediction(event)
	case models.EventTypeReportGenerated:
		l.persistDriftRun(event)
	}
}

func (l *EventLogger) persistPrediction(event *models.Event) {
	if l.predictions == nil {
		return
	}

	payload, ok := event.Data.(*PredictionPayload)
	if !ok {
		return
	}

	l.persist("prediction", func(ctx context.Context) error {
		return l.predictions.Insert(ctx, payload.Record, payload.Prediction)
	})
}

func (l *EventLogger) persistDriftRun(event *models.Event) {
	if l.driftRuns == nil {
		return
	}

	payload, ok := event.Data.(*ReportPayload)
	if !ok || payload.Report == nil {
		return
	}

	l.persist("drift run", func(ctx context.Context) error {
		return l.driftRuns.Insert(ctx, payload.Report, payload.ReportName)
	})
}

func (l *EventLogger) persist(what string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(l.ctx, persistTimeout)
	defer cancel()

	err := l.breaker.Execute(func() error {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			logger.Debugf("Skipping %s persistence, audit sink circuit open", what)
			return
		}
		logger.Errorf("Failed to persist %s: %v", what, err)
	}
}
