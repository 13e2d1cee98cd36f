package handlers

import (
	"fmt"
	"net/http"

	"weather-app-api/models"
	"weather-app-api/observability"
	"weather-app-api/services"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	history *services.HistoryService
}

func NewExportHandler(history *services.HistoryService) *ExportHandler {
	return &ExportHandler{history: history}
}

// fetchRows parses the shared export query parameters and runs the history
// fetch. An inverted date range is rejected before any query is issued.
func (h *ExportHandler) fetchRows(c *gin.Context) ([]models.WeatherHistory, bool) {
	startDate, err := parseDateQuery(c, "start_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	endDate, err := parseDateQuery(c, "end_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return nil, false
	}

	limit, err := parseIntQuery(c, "limit", 1000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if limit < services.MinFetchLimit || limit > services.MaxFetchLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between %d and %d", services.MinFetchLimit, services.MaxFetchLimit)})
		return nil, false
	}
	skip, err := parseIntQuery(c, "skip", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skip must not be negative"})
		return nil, false
	}

	rows, err := h.history.Fetch(services.HistoryFilter{
		LocationName: c.Query("location_name"),
		StartDate:    startDate,
		EndDate:      endDate,
		Limit:        limit,
		Skip:         skip,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return nil, false
	}
	return rows, true
}

func (h *ExportHandler) respondFile(c *gin.Context, format, mediaType string, content []byte) {
	observability.ExportsTotal.WithLabelValues(format).Inc()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "weather_history."+format))
	c.Data(http.StatusOK, mediaType, content)
}

func (h *ExportHandler) CSV(c *gin.Context) {
	rows, ok := h.fetchRows(c)
	if !ok {
		return
	}
	content, err := services.ExportCSV(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	h.respondFile(c, "csv", "text/csv", content)
}

func (h *ExportHandler) JSON(c *gin.Context) {
	rows, ok := h.fetchRows(c)
	if !ok {
		return
	}
	content, err := services.ExportJSON(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	h.respondFile(c, "json", "application/json", content)
}

func (h *ExportHandler) XML(c *gin.Context) {
	rows, ok := h.fetchRows(c)
	if !ok {
		return
	}
	content, err := services.ExportXML(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	h.respondFile(c, "xml", "application/xml", content)
}

func (h *ExportHandler) PDF(c *gin.Context) {
	rows, ok := h.fetchRows(c)
	if !ok {
		return
	}
	content, err := services.ExportPDF(rows, "Weather History Export")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	h.respondFile(c, "pdf", "application/pdf", content)
}
