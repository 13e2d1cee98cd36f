package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Map renders actually performed (cache misses that reached a tile server).
	RendersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherapp_map_renders_total",
		Help: "Total number of static map renders performed.",
	})

	RenderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherapp_render_cache_hits_total",
		Help: "Total number of render cache hits.",
	})

	RenderCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherapp_render_cache_misses_total",
		Help: "Total number of render cache misses.",
	})

	// Outbound provider calls by provider name and outcome (success|error).
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weatherapp_upstream_requests_total",
		Help: "Total number of outbound upstream API requests.",
	}, []string{"provider", "outcome"})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weatherapp_exports_total",
		Help: "Total number of history exports by format.",
	}, []string{"format"})
)
