package handlers

import (
	"fmt"
	"net/http"

	"weather-app-api/services"

	"github.com/gin-gonic/gin"
)

type LocationsHandler struct {
	geocoder *services.GeocodingService
}

func NewLocationsHandler(geocoder *services.GeocodingService) *LocationsHandler {
	return &LocationsHandler{geocoder: geocoder}
}

type GeocodeRequest struct {
	Query string `json:"query" binding:"required,min=2"`
}

func (h *LocationsHandler) Search(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, err := h.geocoder.Search(c.Request.Context(), req.Query, 5)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("geocoding failed: %v", err)})
		return
	}
	if candidates == nil {
		candidates = []services.GeocodeResult{}
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}
