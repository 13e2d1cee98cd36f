package services

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"weather-app-api/observability"
)

const (
	// DefaultRenderCacheSize bounds the memoization table; least-recently-used
	// entries are evicted at capacity.
	DefaultRenderCacheSize = 256

	// At most this many per-template failures are carried in the aggregated
	// error, to bound message size.
	maxReportedFailures = 3
)

// RenderCache memoizes renderer output keyed by canonical request + template.
// Entries live for the process lifetime; there is no invalidation, a rendered
// tile is assumed immutable. The LRU structure serializes its own mutation;
// the slow render itself runs outside any lock, so two concurrent identical
// misses may both render. That is duplicate work, never inconsistency.
type RenderCache struct {
	entries   *lru.Cache[RenderRequest, []byte]
	renderer  TileRenderer
	templates []string
}

func NewRenderCache(renderer TileRenderer, templates []string, capacity int) (*RenderCache, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("render cache needs at least one tile template")
	}
	entries, err := lru.New[RenderRequest, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("render cache: %w", err)
	}
	return &RenderCache{
		entries:   entries,
		renderer:  renderer,
		templates: templates,
	}, nil
}

// GetOrRender returns cached bytes for the canonical parameters, rendering on
// miss. Templates are attempted in resolver order; a per-template failure is
// recorded and the next template tried. When every template fails the request
// fails with the last few per-template errors aggregated.
func (c *RenderCache) GetOrRender(params RenderParams) ([]byte, error) {
	var failures []string

	for _, template := range c.templates {
		req := RenderRequest{RenderParams: params, Template: template}

		if data, ok := c.entries.Get(req); ok {
			observability.RenderCacheHits.Inc()
			return data, nil
		}
		observability.RenderCacheMisses.Inc()

		data, err := c.renderer.Render(req)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s -> %v", template, err))
			continue
		}
		observability.RendersTotal.Inc()

		c.entries.Add(req, data)
		return data, nil
	}

	if len(failures) > maxReportedFailures {
		failures = failures[len(failures)-maxReportedFailures:]
	}
	return nil, fmt.Errorf("all tile servers failed: %s", strings.Join(failures, " ; "))
}

// Len reports the number of cached renders.
func (c *RenderCache) Len() int {
	return c.entries.Len()
}
