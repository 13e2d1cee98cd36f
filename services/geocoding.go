package services

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"weather-app-api/config"
	"weather-app-api/observability"
)

const openCageURL = "https://api.opencagedata.com/geocode/v1/json"

// GeocodeResult is one candidate match for a free-text location query.
type GeocodeResult struct {
	Formatted  string                 `json:"formatted"`
	Lat        float64                `json:"lat"`
	Lon        float64                `json:"lon"`
	Confidence *float64               `json:"confidence,omitempty"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// GeocodingService resolves free-text location queries through OpenCage.
type GeocodingService struct {
	client *resty.Client
	apiKey string
}

func NewGeocodingService(cfg config.UpstreamConfig) *GeocodingService {
	return &GeocodingService{
		client: newRetryingClient(cfg.TimeoutSeconds),
		apiKey: cfg.OpenCageAPIKey,
	}
}

type openCageResponse struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Confidence *float64               `json:"confidence"`
		Components map[string]interface{} `json:"components"`
	} `json:"results"`
}

// Search geocodes a free-text query, returning up to limit candidates.
func (s *GeocodingService) Search(ctx context.Context, query string, limit int) ([]GeocodeResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("opencage: %w", ErrMissingAPIKey)
	}

	var out openCageResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":              query,
			"key":            s.apiKey,
			"limit":          fmt.Sprintf("%d", limit),
			"no_annotations": "1",
			"language":       "en",
		}).
		SetResult(&out).
		Get(openCageURL)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues("opencage", "error").Inc()
		return nil, fmt.Errorf("opencage request: %w", err)
	}
	if resp.IsError() {
		observability.UpstreamRequestsTotal.WithLabelValues("opencage", "error").Inc()
		return nil, fmt.Errorf("opencage returned status %d", resp.StatusCode())
	}
	observability.UpstreamRequestsTotal.WithLabelValues("opencage", "success").Inc()

	results := make([]GeocodeResult, 0, len(out.Results))
	for _, item := range out.Results {
		results = append(results, GeocodeResult{
			Formatted:  item.Formatted,
			Lat:        item.Geometry.Lat,
			Lon:        item.Geometry.Lng,
			Confidence: item.Confidence,
			Components: item.Components,
		})
	}
	return results, nil
}
