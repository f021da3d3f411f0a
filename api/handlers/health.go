package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/driftwatch/pkg/database"
)

// HealthHandler reports liveness and readiness. The database is an optional
// audit sink; when disabled the checks cover the process only.
type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status                  string            `json:"status"`
	AutomaticDriftDetection string            `json:"automatic_drift_detection"`
	Timestamp               string            `json:"timestamp"`
	Checks                  map[string]string `json:"checks,omitempty"`
}

// Health godoc
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is up"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:                  "ok",
		AutomaticDriftDetection: "enabled",
		Timestamp:               time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready godoc
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Ready to serve"
// @Failure 503 {object} HealthResponse "A dependency is unavailable"
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := make(map[string]string)
	status := "ready"
	statusCode := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.db.HealthCheck(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			status = "not ready"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}
	}

	c.JSON(statusCode, HealthResponse{
		Status:                  status,
		AutomaticDriftDetection: "enabled",
		Timestamp:               time.Now().UTC().Format(time.RFC3339),
		Checks:                  checks,
	})
}

// Live godoc
// @Summary Process liveness
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Process is alive"
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:                  "alive",
		AutomaticDriftDetection: "enabled",
		Timestamp:               time.Now().UTC().Format(time.RFC3339),
	})
}
