package events

import (
	"fmt"

	"github.com/OldStager01/driftwatch/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

// PredictionPayload and ReportPayload are the typed event data the audit
// sink asserts on.
type PredictionPayload struct {
	Record     models.FeatureRecord `json:"record"`
	Prediction models.Prediction    `json:"prediction"`
}

type ReportPayload struct {
	Report     *models.DriftReport `json:"report"`
	ReportName string              `json:"report_name"`
}

func (p *Publisher) PredictionServed(record models.FeatureRecord, prediction models.Prediction) {
	event := models.NewEvent(models.EventTypePredictionServed, "", "Prediction served: "+prediction.Class).
		WithData(&PredictionPayload{Record: record, Prediction: prediction})
	p.publish(event)
}

func (p *Publisher) RunStarted(runID string, source models.RunSource, windowSize int) {
	event := models.NewEvent(models.EventTypeRunStarted, runID, "Drift analysis run started").
		WithData(map[string]interface{}{
			"source":      source,
			"window_size": windowSize,
		})
	p.publish(event)
}

func (p *Publisher) RunSkipped(runID string, size, minSamples int) {
	msg := fmt.Sprintf("Drift run skipped: %d of %d required samples", size, minSamples)
	event := models.NewEvent(models.EventTypeRunSkipped, runID, msg).
		WithData(map[string]interface{}{
			"buffer_size": size,
			"min_samples": minSamples,
		})
	p.publish(event)
}

func (p *Publisher) RunRejected(source models.RunSource) {
	event := models.NewEvent(models.EventTypeRunRejected, "", "Drift run rejected, another run is in progress").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"source": source,
		})
	p.publish(event)
}

func (p *Publisher) ReportGenerated(runID string, report *models.DriftReport, reportName string) {
	msg := "Drift report generated: " + reportName
	event := models.NewEvent(models.EventTypeReportGenerated, runID, msg).
		WithData(&ReportPayload{Report: report, ReportName: reportName})
	p.publish(event)
}

func (p *Publisher) DriftDetected(runID string, report *models.DriftReport) {
	msg := fmt.Sprintf("Drift detected in %d of %d features", report.DriftedFeatures, len(report.Features))
	event := models.NewEvent(models.EventTypeDriftDetected, runID, msg).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"verdict":          report.Verdict,
			"drifted_features": report.DriftedFeatureNames(),
			"drift_share":      report.DriftShare,
		})
	p.publish(event)
}

func (p *Publisher) RunFailed(runID string, reason string, err error) {
	msg := "Drift run failed: " + reason
	event := models.NewEvent(models.EventTypeRunFailed, runID, msg).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"reason": reason,
			"error":  err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) Error(runID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, runID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
