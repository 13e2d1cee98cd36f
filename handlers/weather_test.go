package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weather-app-api/config"
	"weather-app-api/services"
)

// setupWeatherRouter wires the handlers against upstream services with no API
// keys configured, so nothing ever leaves the process.
func setupWeatherRouter() *gin.Engine {
	cfg := config.UpstreamConfig{TimeoutSeconds: 1}
	geocoder := services.NewGeocodingService(cfg)
	weather := services.NewWeatherService(cfg)
	handler := NewWeatherHandler(geocoder, weather, zap.NewNop())

	router := gin.New()
	router.POST("/weather/current", handler.Current)
	router.POST("/weather/forecast", handler.Forecast)
	return router
}

func TestWeatherCurrentRejectsMissingLocation(t *testing.T) {
	router := setupWeatherRouter()

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"blank query", `{"query": "   "}`},
		{"lat without lon", `{"lat": 48.85661}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/weather/current", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWeatherCurrentRejectsBadFields(t *testing.T) {
	router := setupWeatherRouter()

	tests := []struct {
		name string
		body string
	}{
		{"latitude out of range", `{"lat": 95, "lon": 2.35}`},
		{"longitude out of range", `{"lat": 48.85, "lon": 200}`},
		{"unknown units", `{"query": "Paris", "units": "kelvin"}`},
		{"malformed json", `{"query": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/weather/current", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWeatherForecastRejectsBadDays(t *testing.T) {
	router := setupWeatherRouter()

	for _, body := range []string{
		`{"query": "Paris", "days": 6}`,
		`{"query": "Paris", "days": -1}`,
	} {
		rec := doJSON(t, router, http.MethodPost, "/weather/forecast", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: got %d, want 400", body, rec.Code)
		}
	}
}

func TestWeatherUpstreamUnavailable(t *testing.T) {
	router := setupWeatherRouter()

	// Free-text resolution needs the geocoder, which has no key configured.
	rec := doJSON(t, router, http.MethodPost, "/weather/current", `{"query": "Paris"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("geocoded lookup: got %d, want 502: %s", rec.Code, rec.Body.String())
	}

	// Raw coordinates skip geocoding but still need the weather upstream.
	rec = doJSON(t, router, http.MethodPost, "/weather/current", `{"lat": 48.85661, "lon": 2.35222}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("coordinate lookup: got %d, want 502: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/weather/forecast", `{"lat": 48.85661, "lon": 2.35222}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("forecast: got %d, want 502: %s", rec.Code, rec.Body.String())
	}
}
