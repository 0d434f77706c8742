package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProxyMetrics records upstream behavior of the medusa proxy.
type ProxyMetrics struct {
	upstreamDuration *prometheus.HistogramVec
	timeouts         prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	rateLimited      prometheus.Counter
}

// NewProxyMetrics registers the proxy metrics on the provided registerer.
func NewProxyMetrics(reg prometheus.Registerer) *ProxyMetrics {
	if reg == nil {
		return &ProxyMetrics{}
	}
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proxy_upstream_duration_seconds",
		Help:    "Duration of proxied upstream calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	timeouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proxy_upstream_timeouts",
		Help: "Upstream calls aborted by the proxy timeout.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proxy_cache_hits",
		Help: "Proxy responses served from cache.",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proxy_cache_misses",
		Help: "Proxy responses fetched upstream.",
	})
	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proxy_rate_limited",
		Help: "Proxy requests rejected by the rate limit.",
	})
	reg.MustRegister(upstreamDuration, timeouts, cacheHits, cacheMisses, rateLimited)
	return &ProxyMetrics{
		upstreamDuration: upstreamDuration,
		timeouts:         timeouts,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		rateLimited:      rateLimited,
	}
}

// ObserveUpstream records the duration of an upstream call.
func (p *ProxyMetrics) ObserveUpstream(method string, duration time.Duration) {
	if p == nil || p.upstreamDuration == nil {
		return
	}
	p.upstreamDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncTimeout increments the upstream timeout counter.
func (p *ProxyMetrics) IncTimeout() {
	if p == nil || p.timeouts == nil {
		return
	}
	p.timeouts.Inc()
}

// IncCacheHit increments the cache hit counter.
func (p *ProxyMetrics) IncCacheHit() {
	if p == nil || p.cacheHits == nil {
		return
	}
	p.cacheHits.Inc()
}

// IncCacheMiss increments the cache miss counter.
func (p *ProxyMetrics) IncCacheMiss() {
	if p == nil || p.cacheMisses == nil {
		return
	}
	p.cacheMisses.Inc()
}

// IncRateLimited increments the rate limit rejection counter.
func (p *ProxyMetrics) IncRateLimited() {
	if p == nil || p.rateLimited == nil {
		return
	}
	p.rateLimited.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
