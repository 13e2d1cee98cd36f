package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"weather-app-api/services"
)

// pngRenderer produces a real (tiny) PNG without touching any tile server.
type pngRenderer struct {
	calls int
}

func (r *pngRenderer) Render(req services.RenderRequest) ([]byte, error) {
	r.calls++
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 0xDD, A: 0xFF})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setupMapsRouter(t *testing.T) (*gin.Engine, *pngRenderer) {
	t.Helper()
	renderer := &pngRenderer{}
	cache, err := services.NewRenderCache(renderer, []string{"https://tiles.test/{z}/{x}/{y}.png"}, 16)
	if err != nil {
		t.Fatalf("NewRenderCache: %v", err)
	}
	handler := NewMapsHandler(nil, cache)

	router := gin.New()
	router.GET("/maps/by-coords", handler.ByCoords)
	router.GET("/maps/by-coords/image", handler.ByCoordsImage)
	return router, renderer
}

func TestMapsByCoordsMetadata(t *testing.T) {
	router, renderer := setupMapsRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/maps/by-coords?lat=48.85661&lon=2.35222", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	imageURL, _ := body["static_map_url"].(string)
	if !strings.HasPrefix(imageURL, "/maps/by-coords/image?") {
		t.Errorf("static_map_url = %q", imageURL)
	}
	for _, param := range []string{"lat=48.85661", "lon=2.35222", "zoom=13", "width=640", "height=400", "scale=1"} {
		if !strings.Contains(imageURL, param) {
			t.Errorf("static_map_url missing %s: %q", param, imageURL)
		}
	}
	if body["attribution"] != osmAttribution {
		t.Errorf("attribution = %v", body["attribution"])
	}
	// Metadata is cheap; no render happens until the image is requested.
	if renderer.calls != 0 {
		t.Errorf("metadata request triggered %d renders", renderer.calls)
	}
}

func TestMapsImageRendersAndCaches(t *testing.T) {
	router, renderer := setupMapsRouter(t)

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/maps/by-coords/image?lat=48.85661&lon=2.35222&zoom=13", nil))
		return rec
	}

	rec := get()
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=86400") {
		t.Errorf("Cache-Control = %q", cc)
	}
	if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Errorf("response is not a decodable png: %v", err)
	}

	first := rec.Body.Bytes()
	rec = get()
	if renderer.calls != 1 {
		t.Errorf("renderer invoked %d times for identical requests, want 1", renderer.calls)
	}
	if !bytes.Equal(first, rec.Body.Bytes()) {
		t.Errorf("cached response differs from original")
	}
}

func TestMapsImageNormalizesEquivalentRequests(t *testing.T) {
	router, renderer := setupMapsRouter(t)

	paths := []string{
		// Same location after rounding to 5 decimal places, oversize
		// dimensions clamped to the same canonical value.
		"/maps/by-coords/image?lat=48.856610001&lon=2.35222&zoom=13&width=5000",
		"/maps/by-coords/image?lat=48.85661&lon=2.35222&zoom=13&width=2000",
	}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, rec.Code)
		}
	}
	if renderer.calls != 1 {
		t.Errorf("equivalent requests rendered %d times, want 1", renderer.calls)
	}
}

func TestMapsImageWebP(t *testing.T) {
	router, _ := setupMapsRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/maps/by-coords/image?lat=48.85661&lon=2.35222&format=webp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/webp" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := rec.Body.Bytes(); len(body) < 12 || string(body[:4]) != "RIFF" {
		t.Errorf("body is not a webp container")
	}
}

func TestMapsQueryValidation(t *testing.T) {
	router, _ := setupMapsRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing lat", "/maps/by-coords/image?lon=2.35222"},
		{"missing lon", "/maps/by-coords/image?lat=48.85661"},
		{"bad format", "/maps/by-coords/image?lat=48.85661&lon=2.35222&format=gif"},
		{"metadata missing coords", "/maps/by-coords"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMapsImageAllServersDown(t *testing.T) {
	cache, err := services.NewRenderCache(failingRenderer{}, []string{"https://tiles.test/{z}/{x}/{y}.png"}, 16)
	if err != nil {
		t.Fatalf("NewRenderCache: %v", err)
	}
	handler := NewMapsHandler(nil, cache)
	router := gin.New()
	router.GET("/maps/by-coords/image", handler.ByCoordsImage)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/maps/by-coords/image?lat=48.85661&lon=2.35222", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want 502: %s", rec.Code, rec.Body.String())
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(services.RenderRequest) ([]byte, error) {
	return nil, http.ErrHandlerTimeout
}
