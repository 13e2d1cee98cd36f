package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"weather-app-api/services"

	"github.com/gin-gonic/gin"
)

type YouTubeHandler struct {
	youtube *services.YouTubeService
}

func NewYouTubeHandler(youtube *services.YouTubeService) *YouTubeHandler {
	return &YouTubeHandler{youtube: youtube}
}

// ForLocation searches videos about a location, with an optional topic
// appended to the query.
func (h *YouTubeHandler) ForLocation(c *gin.Context) {
	location := c.Param("location")

	query := location
	if topic := strings.TrimSpace(c.Query("topic")); topic != "" {
		query = location + " " + topic
	}

	maxResults, err := parseIntQuery(c, "max_results", 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if maxResults < 1 || maxResults > 25 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_results must be between 1 and 25"})
		return
	}

	videos, err := h.youtube.Search(c.Request.Context(), query, maxResults)
	if err != nil {
		if errors.Is(err, services.ErrMissingAPIKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("youtube API error: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "results": videos})
}
