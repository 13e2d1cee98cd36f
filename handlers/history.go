package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"weather-app-api/models"
	"weather-app-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HistoryHandler struct {
	history *services.HistoryService
}

func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

type HistoryCreateRequest struct {
	LocationName string          `json:"location_name" binding:"required,min=2,max=100"`
	Latitude     *float64        `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude    *float64        `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	StartDate    *string         `json:"start_date"`
	EndDate      *string         `json:"end_date"`
	Temperature  *float64        `json:"temperature" binding:"required"`
	Humidity     *float64        `json:"humidity" binding:"required"`
	RecordedAt   *time.Time      `json:"recorded_at" binding:"required"`
	WeatherData  json.RawMessage `json:"weather_data"`
}

// HistoryUpdateRequest is a partial update: absent (null) fields leave the
// stored values untouched.
type HistoryUpdateRequest struct {
	LocationName *string         `json:"location_name" binding:"omitempty,min=2,max=100"`
	Latitude     *float64        `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude    *float64        `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	StartDate    *string         `json:"start_date"`
	EndDate      *string         `json:"end_date"`
	Temperature  *float64        `json:"temperature"`
	Humidity     *float64        `json:"humidity"`
	RecordedAt   *time.Time      `json:"recorded_at"`
	WeatherData  json.RawMessage `json:"weather_data"`
}

func (h *HistoryHandler) Create(c *gin.Context) {
	var req HistoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, endDate, err := parseDateFields(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := models.WeatherHistory{
		LocationName: &req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		StartDate:    startDate,
		EndDate:      endDate,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		RecordedAt:   req.RecordedAt,
		WeatherData:  datatypes.JSON(req.WeatherData),
	}
	if err := h.history.Create(&record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store record"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *HistoryHandler) List(c *gin.Context) {
	skip, err := parseIntQuery(c, "skip", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseIntQuery(c, "limit", 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.history.Fetch(services.HistoryFilter{Limit: limit, Skip: skip})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Search filters by location substring and a required ISO date range. The
// inverted-range check happens here, before any query is issued; equal dates
// are accepted.
func (h *HistoryHandler) Search(c *gin.Context) {
	location := c.Query("location_name")
	if len(location) < 2 || len(location) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_name must be between 2 and 50 characters"})
		return
	}

	startDate, err := parseDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endDate, err := parseDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if startDate.After(*endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start date cannot be after end date"})
		return
	}

	rows, err := h.history.Fetch(services.HistoryFilter{
		LocationName: location,
		StartDate:    startDate,
		EndDate:      endDate,
		Limit:        services.MaxFetchLimit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *HistoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	var req HistoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, endDate, err := parseDateFields(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.history.Update(uint(id), services.HistoryUpdate{
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		StartDate:    startDate,
		EndDate:      endDate,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		RecordedAt:   req.RecordedAt,
		WeatherData:  datatypes.JSON(req.WeatherData),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update record"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	deleted, err := h.history.Delete(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete record"})
		return
	}
	c.JSON(http.StatusOK, deleted)
}

func parseDateFields(start, end *string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	var err error
	if start != nil {
		if startDate, err = parseDate(*start); err != nil {
			return nil, nil, err
		}
	}
	if end != nil {
		if endDate, err = parseDate(*end); err != nil {
			return nil, nil, err
		}
	}
	return startDate, endDate, nil
}
