package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/driftwatch/internal/reportstore"
)

// ReportsHandler serves stored report files.
type ReportsHandler struct {
	store *reportstore.Store
}

func NewReportsHandler(store *reportstore.Store) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// Get godoc
// @Summary Fetch a stored drift report
// @Description Serve a report file by name; names are validated against the store's naming scheme
// @Tags Reports
// @Produce html
// @Param name path string true "Report filename"
// @Success 200 {string} string "Report HTML"
// @Failure 400 {object} map[string]string "Invalid report name"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /reports/{name} [get]
func (h *ReportsHandler) Get(c *gin.Context) {
	name := c.Param("name")

	path, err := h.store.Resolve(name)
	if err != nil {
		if errors.Is(err, reportstore.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.File(path)
}
