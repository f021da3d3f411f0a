package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/driftwatch/api/handlers"
	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/internal/events"
	"github.com/OldStager01/driftwatch/internal/model"
	"github.com/OldStager01/driftwatch/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newPredictRouter(classifier model.Classifier, buf *buffer.Buffer) *gin.Engine {
	bus := events.NewEventBus(8)
	handler := handlers.NewPredictHandler(classifier, buf, events.NewPublisher(bus))

	router := gin.New()
	router.POST("/predict", handler.Predict)
	return router
}

func postPredict(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestPredict_Success(t *testing.T) {
	classifier := model.NewMockClassifier(model.MockClassifierConfig{
		Result:   models.Prediction{ClassID: 1, Class: "versicolor"},
		Features: []string{"f1", "f2"},
	})
	buf := buffer.New(10)
	router := newPredictRouter(classifier, buf)

	w := postPredict(t, router, map[string]float64{"f1": 1.0, "f2": 2.0})

	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "versicolor", resp.Class)
	assert.Equal(t, 1, resp.ClassID)

	// The served input landed in the production buffer.
	require.Equal(t, 1, buf.Size())
	record := buf.Snapshot()[0]
	assert.Equal(t, 1.0, record.Features["f1"])
	assert.Equal(t, 1, record.Prediction)
	assert.Equal(t, 1, classifier.Calls())
}

func TestPredict_InvalidBody(t *testing.T) {
	classifier := model.NewMockClassifier(model.MockClassifierConfig{
		Features: []string{"f1"},
	})
	buf := buffer.New(10)
	router := newPredictRouter(classifier, buf)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, buf.Size())
	assert.Equal(t, 0, classifier.Calls())
}

func TestPredict_MissingFeature(t *testing.T) {
	classifier := model.NewMockClassifier(model.MockClassifierConfig{
		Features: []string{"f1", "f2"},
	})
	buf := buffer.New(10)
	router := newPredictRouter(classifier, buf)

	w := postPredict(t, router, map[string]float64{"f1": 1.0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing required features")
	assert.Equal(t, 0, buf.Size())
	assert.Equal(t, 0, classifier.Calls())
}

func TestPredict_ClassifierFailure(t *testing.T) {
	classifier := model.NewMockClassifier(model.MockClassifierConfig{
		Err:      errors.New("model exploded"),
		Features: []string{"f1"},
	})
	buf := buffer.New(10)
	router := newPredictRouter(classifier, buf)

	w := postPredict(t, router, map[string]float64{"f1": 1.0})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "prediction failed")

	// A failed prediction never touches the buffer.
	assert.Equal(t, 0, buf.Size())
}

func TestPredict_ExtraFeaturesAccepted(t *testing.T) {
	classifier := model.NewMockClassifier(model.MockClassifierConfig{
		Result:   models.Prediction{ClassID: 0, Class: "setosa"},
		Features: []string{"f1"},
	})
	buf := buffer.New(10)
	router := newPredictRouter(classifier, buf)

	w := postPredict(t, router, map[string]float64{"f1": 1.0, "extra": 42})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, buf.Size())
}
