package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"weather-app-api/config"
	"weather-app-api/services"
)

func setupYouTubeRouter() *gin.Engine {
	youtube := services.NewYouTubeService(config.UpstreamConfig{TimeoutSeconds: 1})
	handler := NewYouTubeHandler(youtube)

	router := gin.New()
	router.GET("/youtube/:location", handler.ForLocation)
	return router
}

func TestYouTubeMaxResultsValidation(t *testing.T) {
	router := setupYouTubeRouter()

	tests := []struct {
		name string
		path string
	}{
		{"zero", "/youtube/Paris?max_results=0"},
		{"too many", "/youtube/Paris?max_results=26"},
		{"negative", "/youtube/Paris?max_results=-3"},
		{"garbage", "/youtube/Paris?max_results=lots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestYouTubeMissingAPIKey(t *testing.T) {
	router := setupYouTubeRouter()

	// A missing key is a configuration problem, reported as a client error
	// rather than an upstream failure.
	rec := doJSON(t, router, http.MethodGet, "/youtube/Paris", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
	}
}
