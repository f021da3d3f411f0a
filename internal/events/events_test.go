package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/driftwatch/internal/events"
	"github.com/OldStager01/driftwatch/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeReceivesMatchingType(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeDriftDetected)

	bus.Publish(models.NewEvent(models.EventTypeRunStarted, "r1", "started"))
	bus.Publish(models.NewEvent(models.EventTypeDriftDetected, "r1", "drift"))

	event := receive(t, ch)
	assert.Equal(t, models.EventTypeDriftDetected, event.Type)
	assert.Equal(t, "r1", event.RunID)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra event: %s", extra.Type)
	default:
	}
}

func TestEventBus_SubscribeAllReceivesEveryType(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()

	ch := bus.SubscribeAll()

	published := []models.EventType{
		models.EventTypePredictionServed,
		models.EventTypeRunStarted,
		models.EventTypeReportGenerated,
		models.EventTypeRunFailed,
	}
	for _, eventType := range published {
		bus.Publish(models.NewEvent(eventType, "", "test"))
	}

	for _, expected := range published {
		assert.Equal(t, expected, receive(t, ch).Type)
	}
}

func TestEventBus_PublishNeverBlocks(t *testing.T) {
	bus := events.NewEventBus(1)
	defer bus.Close()

	bus.Subscribe(models.EventTypeRunStarted) // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			bus.Publish(models.NewEvent(models.EventTypeRunStarted, "", "flood"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}
}

func TestEventBus_CloseIsIdempotent(t *testing.T) {
	bus := events.NewEventBus(8)
	ch := bus.SubscribeAll()

	bus.Close()
	bus.Close()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after close is a no-op, not a panic.
	bus.Publish(models.NewEvent(models.EventTypeError, "", "late"))
}

func TestPublisher_PredictionServedPayload(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()
	ch := bus.Subscribe(models.EventTypePredictionServed)

	publisher := events.NewPublisher(bus)
	record := models.NewFeatureRecord(map[string]float64{"f1": 1.5}, 2)
	publisher.PredictionServed(record, models.Prediction{ClassID: 2, Class: "virginica"})

	event := receive(t, ch)
	payload, ok := event.Data.(*events.PredictionPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Prediction.ClassID)
	assert.Equal(t, 1.5, payload.Record.Features["f1"])
	assert.Equal(t, models.SeverityInfo, event.Severity)
}

func TestPublisher_WithTraceID(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()
	ch := bus.Subscribe(models.EventTypeRunRejected)

	events.NewPublisher(bus).WithTraceID("trace-123").RunRejected(models.RunSourceTrigger)

	event := receive(t, ch)
	assert.Equal(t, "trace-123", event.TraceID)
	assert.Equal(t, models.SeverityWarning, event.Severity)
}

func TestPublisher_DriftDetectedSeverity(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()
	ch := bus.Subscribe(models.EventTypeDriftDetected)

	report := &models.DriftReport{
		Features:        []models.FeatureDrift{{Feature: "f1", Drifted: true}},
		DriftedFeatures: 1,
		DriftShare:      1,
		Verdict:         models.VerdictDrift,
	}
	events.NewPublisher(bus).DriftDetected("r1", report)

	event := receive(t, ch)
	assert.Equal(t, models.SeverityCritical, event.Severity)
	assert.Equal(t, "r1", event.RunID)
}
