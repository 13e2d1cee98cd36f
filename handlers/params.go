package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseIntQuery reads an integer query parameter, falling back to def when
// absent and erroring on garbage.
func parseIntQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return value, nil
}

// parseDateQuery reads an optional ISO date (YYYY-MM-DD) query parameter.
func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	return parseDate(raw)
}

func parseDate(raw string) (*time.Time, error) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s. Use YYYY-MM-DD", raw)
	}
	return &parsed, nil
}
