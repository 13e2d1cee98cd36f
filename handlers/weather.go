package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"weather-app-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errNoLocation = errors.New("provide lat/lon, zip_code, or query")

type WeatherHandler struct {
	geocoder *services.GeocodingService
	weather  *services.WeatherService
	logger   *zap.Logger
}

func NewWeatherHandler(geocoder *services.GeocodingService, weather *services.WeatherService, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{geocoder: geocoder, weather: weather, logger: logger}
}

// LocationQuery describes a location as free text, zip+country, or raw
// coordinates. At least one form must be present.
type LocationQuery struct {
	Query       string   `json:"query"`
	ZipCode     string   `json:"zip_code"`
	CountryCode string   `json:"country_code"`
	Lat         *float64 `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon" binding:"omitempty,gte=-180,lte=180"`
	Units       string   `json:"units" binding:"omitempty,oneof=standard metric imperial"`
}

func (q LocationQuery) hasLocation() bool {
	return strings.TrimSpace(q.Query) != "" ||
		strings.TrimSpace(q.ZipCode) != "" ||
		(q.Lat != nil && q.Lon != nil)
}

func (q LocationQuery) units() string {
	if q.Units == "" {
		return "metric"
	}
	return q.Units
}

type ForecastRequest struct {
	LocationQuery
	Days int `json:"days" binding:"omitempty,min=1,max=5"`
}

// resolveLocation turns the query into coordinates, preferring explicit
// lat/lon, then zip+country, then free text.
func (h *WeatherHandler) resolveLocation(ctx context.Context, q LocationQuery) (lat, lon float64, name string, err error) {
	if q.Lat != nil && q.Lon != nil {
		return *q.Lat, *q.Lon, "", nil
	}

	query := strings.TrimSpace(q.Query)
	if zip := strings.TrimSpace(q.ZipCode); zip != "" {
		query = strings.TrimSpace(zip + " " + strings.TrimSpace(q.CountryCode))
	}
	if query == "" {
		return 0, 0, "", errNoLocation
	}

	results, err := h.geocoder.Search(ctx, query, 1)
	if err != nil {
		return 0, 0, "", err
	}
	if len(results) == 0 {
		return 0, 0, "", fmt.Errorf("%q: %w", query, services.ErrNoMatch)
	}
	return results[0].Lat, results[0].Lon, results[0].Formatted, nil
}

func (h *WeatherHandler) Current(c *gin.Context) {
	var req LocationQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.hasLocation() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no location provided"})
		return
	}

	lat, lon, name, err := h.resolveLocation(c.Request.Context(), req)
	if err != nil {
		h.respondResolveError(c, err)
		return
	}

	data, err := h.weather.CurrentByCoords(c.Request.Context(), lat, lon, req.units())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("weather API failed: %v", err)})
		return
	}
	if name != "" {
		data.Location.Name = name
	}
	c.JSON(http.StatusOK, data)
}

func (h *WeatherHandler) Forecast(c *gin.Context) {
	var req ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.hasLocation() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no location provided"})
		return
	}
	days := req.Days
	if days == 0 {
		days = 5
	}

	lat, lon, name, err := h.resolveLocation(c.Request.Context(), req.LocationQuery)
	if err != nil {
		h.respondResolveError(c, err)
		return
	}

	data, err := h.weather.ForecastByCoords(c.Request.Context(), lat, lon, req.units(), days)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("weather API failed: %v", err)})
		return
	}
	if name != "" {
		data.Location.Name = name
	}
	c.JSON(http.StatusOK, data)
}

func (h *WeatherHandler) respondResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNoLocation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
	default:
		h.logger.Warn("geocoding failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("geocoding failed: %v", err)})
	}
}
