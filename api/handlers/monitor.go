package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/internal/monitor"
	"github.com/OldStager01/driftwatch/internal/reportstore"
	"github.com/OldStager01/driftwatch/pkg/models"
)

const recentReportCount = 10

// MonitorHandler exposes the scheduler status and the manual trigger paths.
type MonitorHandler struct {
	scheduler *monitor.Scheduler
	buffer    *buffer.Buffer
	store     *reportstore.Store
}

func NewMonitorHandler(scheduler *monitor.Scheduler, buf *buffer.Buffer, store *reportstore.Store) *MonitorHandler {
	return &MonitorHandler{
		scheduler: scheduler,
		buffer:    buf,
		store:     store,
	}
}

type ReportInfoResponse struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
}

type StatusResponse struct {
	AutomaticDetection  bool                 `json:"automatic_detection"`
	SchedulerState      string               `json:"scheduler_state"`
	IntervalSeconds     float64              `json:"interval_seconds"`
	IntervalDescription string               `json:"interval_description"`
	NextScheduledRun    *time.Time           `json:"next_scheduled_run,omitempty"`
	CurrentDataPoints   int                  `json:"current_data_points"`
	MinimumDataPoints   int                  `json:"minimum_data_points_required"`
	ReadyForDetection   bool                 `json:"ready_for_detection"`
	RecentReports       []ReportInfoResponse `json:"recent_reports"`
	LatestReportURL     *string              `json:"latest_report_url"`
}

// Status godoc
// @Summary Monitoring status
// @Description Scheduler state, buffer fill level and recent drift reports
// @Tags Monitor
// @Produce json
// @Success 200 {object} StatusResponse "Current monitoring status"
// @Router /monitor/status [get]
func (h *MonitorHandler) Status(c *gin.Context) {
	status := h.scheduler.Status()
	size := h.buffer.Size()
	minSamples := h.scheduler.MinSamples()

	resp := StatusResponse{
		AutomaticDetection:  true,
		SchedulerState:      string(status.State),
		IntervalSeconds:     status.Interval.Seconds(),
		IntervalDescription: fmt.Sprintf("every %s", status.Interval),
		CurrentDataPoints:   size,
		MinimumDataPoints:   minSamples,
		ReadyForDetection:   size >= minSamples,
		RecentReports:       []ReportInfoResponse{},
	}

	if !status.NextRun.IsZero() {
		next := status.NextRun
		resp.NextScheduledRun = &next
	}

	if recent, err := h.store.ListRecent(recentReportCount); err == nil {
		for _, info := range recent {
			resp.RecentReports = append(resp.RecentReports, ReportInfoResponse{
				Name:      info.Name,
				URL:       h.store.URL(info.Name),
				SizeBytes: info.Size,
				Modified:  info.Modified,
			})
		}
	}

	if latest, ok := h.store.LatestInfo(); ok {
		url := h.store.URL(latest.Name)
		resp.LatestReportURL = &url
	}

	c.JSON(http.StatusOK, resp)
}

// TriggerNow godoc
// @Summary Trigger a drift analysis run
// @Description Request an immediate analysis run; rejected if one is already in progress
// @Tags Monitor
// @Produce json
// @Success 200 {object} map[string]interface{} "Run completed or skipped for insufficient data"
// @Failure 409 {object} map[string]string "A run is already in progress"
// @Failure 500 {object} map[string]string "Run failed"
// @Router /monitor/trigger_now [post]
func (h *MonitorHandler) TriggerNow(c *gin.Context) {
	h.runAndRespond(c, models.RunSourceTrigger)
}

// GenerateReport godoc
// @Summary Generate a drift report (legacy alias)
// @Description Synchronous manual run; same gate and outcomes as trigger_now
// @Tags Monitor
// @Produce json
// @Success 200 {object} map[string]interface{} "Run completed or skipped for insufficient data"
// @Failure 409 {object} map[string]string "A run is already in progress"
// @Failure 500 {object} map[string]string "Run failed"
// @Router /monitor/generate_report [get]
func (h *MonitorHandler) GenerateReport(c *gin.Context) {
	h.runAndRespond(c, models.RunSourceManual)
}

func (h *MonitorHandler) runAndRespond(c *gin.Context, source models.RunSource) {
	result, err := h.scheduler.RunNow(source)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":               "report_generated",
			"verdict":              result.Report.Verdict,
			"drifted_features":     result.Report.DriftedFeatureNames(),
			"data_points_analyzed": result.DataPoints,
			"report_url":           h.store.URL(result.ReportName),
			"latest_report_url":    h.store.URL("drift_report_latest.html"),
		})

	case errors.Is(err, monitor.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{
			"status": "rejected",
			"error":  "a drift analysis run is already in progress",
		})

	case errors.Is(err, monitor.ErrInsufficientData):
		// Expected while the buffer warms up; a message, not an error.
		c.JSON(http.StatusOK, gin.H{
			"status":              "insufficient_data",
			"message":             err.Error(),
			"current_data_points": h.buffer.Size(),
			"minimum_required":    h.scheduler.MinSamples(),
		})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "failed",
			"error":  err.Error(),
		})
	}
}
