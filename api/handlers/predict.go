package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/internal/events"
	"github.com/OldStager01/driftwatch/internal/logger"
	"github.com/OldStager01/driftwatch/internal/metrics"
	"github.com/OldStager01/driftwatch/internal/model"
	"github.com/OldStager01/driftwatch/pkg/models"
	"github.com/OldStager01/driftwatch/pkg/validation"
)

// PredictHandler serves predictions and feeds the production buffer. The
// buffer append happens unconditionally after a successful prediction and
// never waits on the scheduler.
type PredictHandler struct {
	classifier model.Classifier
	buffer     *buffer.Buffer
	publisher  *events.Publisher
}

func NewPredictHandler(classifier model.Classifier, buf *buffer.Buffer, publisher *events.Publisher) *PredictHandler {
	return &PredictHandler{
		classifier: classifier,
		buffer:     buf,
		publisher:  publisher,
	}
}

type PredictResponse struct {
	Class   string `json:"class" example:"setosa"`
	ClassID int    `json:"class_id" example:"0"`
}

// Predict godoc
// @Summary Serve a prediction
// @Description Classify a feature vector and record it in the production buffer
// @Tags Predict
// @Accept json
// @Produce json
// @Param request body map[string]float64 true "Feature name to value"
// @Success 200 {object} PredictResponse "Prediction"
// @Failure 400 {object} map[string]string "Invalid feature vector"
// @Failure 500 {object} map[string]string "Prediction failed"
// @Router /predict [post]
func (h *PredictHandler) Predict(c *gin.Context) {
	var features map[string]float64
	if err := c.ShouldBindJSON(&features); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object of feature values"})
		return
	}

	if err := validation.ValidateFeatureVector(features, h.classifier.Features()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.classifier.Predict(c.Request.Context(), features)
	if err != nil {
		logger.Errorf("Prediction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	record := models.NewFeatureRecord(features, prediction.ClassID)
	h.buffer.Append(record)

	metrics.PredictionsTotal.WithLabelValues(prediction.Class).Inc()
	metrics.BufferSize.Set(float64(h.buffer.Size()))
	h.publisher.WithTraceID(traceID(c)).PredictionServed(record, prediction)

	c.JSON(http.StatusOK, PredictResponse{
		Class:   prediction.Class,
		ClassID: prediction.ClassID,
	})
}

func traceID(c *gin.Context) string {
	if id, exists := c.Get("trace_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
