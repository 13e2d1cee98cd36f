package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"weather-app-api/services"

	"github.com/gin-gonic/gin"
)

const osmAttribution = "© OpenStreetMap contributors"

// Rendered tiles are treated as immutable for the life of the process, so
// image responses may be cached aggressively by clients.
const imageCacheControl = "public, max-age=86400, immutable"

type MapsHandler struct {
	geocoder *services.GeocodingService
	cache    *services.RenderCache
}

func NewMapsHandler(geocoder *services.GeocodingService, cache *services.RenderCache) *MapsHandler {
	return &MapsHandler{geocoder: geocoder, cache: cache}
}

type mapCoordsQuery struct {
	Lat    *float64 `form:"lat" binding:"required"`
	Lon    *float64 `form:"lon" binding:"required"`
	Zoom   int      `form:"zoom,default=13"`
	Width  int      `form:"width,default=640"`
	Height int      `form:"height,default=400"`
	Scale  int      `form:"scale,default=1"`
	Format string   `form:"format,default=png" binding:"omitempty,oneof=png webp"`
}

// staticMapURL points clients at the backend renderer so <img> tags load
// without any upstream key.
func staticMapURL(lat, lon float64, zoom, width, height, scale int) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", strconv.Itoa(zoom))
	params.Set("width", strconv.Itoa(width))
	params.Set("height", strconv.Itoa(height))
	params.Set("scale", strconv.Itoa(scale))
	return "/maps/by-coords/image?" + params.Encode()
}

// ByCoords returns render metadata and image URLs for raw coordinates.
func (h *MapsHandler) ByCoords(c *gin.Context) {
	var q mapCoordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL := staticMapURL(*q.Lat, *q.Lon, q.Zoom, q.Width, q.Height, q.Scale)
	c.JSON(http.StatusOK, gin.H{
		"label":           fmt.Sprintf("%.5f, %.5f", *q.Lat, *q.Lon),
		"lat":             *q.Lat,
		"lon":             *q.Lon,
		"static_map_url":  imageURL,
		"proxy_image_url": imageURL,
		"attribution":     osmAttribution,
	})
}

// ByCoordsImage renders (or serves from cache) the actual raster.
func (h *MapsHandler) ByCoordsImage(c *gin.Context) {
	var q mapCoordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := services.NormalizeRenderParams(services.RenderParams{
		Lat:    *q.Lat,
		Lon:    *q.Lon,
		Zoom:   q.Zoom,
		Width:  q.Width,
		Height: q.Height,
		Scale:  q.Scale,
	})

	data, err := h.cache.GetOrRender(params)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("render error: %v", err)})
		return
	}

	contentType := "image/png"
	if q.Format == "webp" {
		data, err = services.TranscodeToWebP(data)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("render error: %v", err)})
			return
		}
		contentType = "image/webp"
	}

	c.Header("Cache-Control", imageCacheControl)
	c.Data(http.StatusOK, contentType, data)
}

type mapLocationQuery struct {
	Zoom   int `form:"zoom,default=13"`
	Width  int `form:"width,default=640"`
	Height int `form:"height,default=400"`
	Scale  int `form:"scale,default=1"`
}

// ForLocation geocodes a free-text location, then returns metadata pointing
// at the backend renderer.
func (h *MapsHandler) ForLocation(c *gin.Context) {
	location := c.Param("location")

	var q mapLocationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.geocoder.Search(c.Request.Context(), location, 1)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("map generation failed: %v", err)})
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
		return
	}

	match := results[0]
	imageURL := staticMapURL(match.Lat, match.Lon, q.Zoom, q.Width, q.Height, q.Scale)
	c.JSON(http.StatusOK, gin.H{
		"query":           location,
		"label":           match.Formatted,
		"lat":             match.Lat,
		"lon":             match.Lon,
		"static_map_url":  imageURL,
		"proxy_image_url": imageURL,
		"attribution":     osmAttribution,
	})
}
