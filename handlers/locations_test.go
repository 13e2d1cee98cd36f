package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"weather-app-api/config"
	"weather-app-api/services"
)

func setupLocationsRouter() *gin.Engine {
	geocoder := services.NewGeocodingService(config.UpstreamConfig{TimeoutSeconds: 1})
	handler := NewLocationsHandler(geocoder)

	router := gin.New()
	router.POST("/locations/search", handler.Search)
	return router
}

func TestLocationsSearchValidation(t *testing.T) {
	router := setupLocationsRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{}`},
		{"single character", `{"query": "P"}`},
		{"malformed json", `{"query"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/locations/search", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLocationsSearchUpstreamUnavailable(t *testing.T) {
	router := setupLocationsRouter()

	// No geocoding key is configured, so a valid query fails upstream.
	rec := doJSON(t, router, http.MethodPost, "/locations/search", `{"query": "Paris"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want 502: %s", rec.Code, rec.Body.String())
	}
}
