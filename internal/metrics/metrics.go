// Package metrics exposes Prometheus counters for the import pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogforge"

// Collector owns its registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	oauthRequests       *prometheus.CounterVec
	contentFetches      *prometheus.CounterVec
	generations         *prometheus.CounterVec
	seoScore            prometheus.Histogram
}

func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	c.oauthRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_requests_total",
			Help:      "OAuth authorize and token requests by outcome",
		},
		[]string{"provider", "mode", "outcome"},
	)

	c.contentFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_fetches_total",
			Help:      "Provider content fetches by outcome",
		},
		[]string{"provider", "outcome"},
	)

	c.generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Blog generations by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	c.seoScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "seo_score",
			Help:      "Heuristic SEO score of generated posts",
			Buckets:   prometheus.LinearBuckets(50, 8, 7),
		},
	)

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.oauthRequests,
		c.contentFetches,
		c.generations,
		c.seoScore,
	)

	return c
}

func (c *Collector) ObserveOAuth(provider, mode, outcome string) {
	c.oauthRequests.WithLabelValues(provider, mode, outcome).Inc()
}

func (c *Collector) ObserveFetch(provider, outcome string) {
	c.contentFetches.WithLabelValues(provider, outcome).Inc()
}

// ObserveGeneration records the outcome and, on success, the score.
func (c *Collector) ObserveGeneration(backend, outcome string, score int) {
	c.generations.WithLabelValues(backend, outcome).Inc()
	if outcome == "success" {
		c.seoScore.Observe(float64(score))
	}
}

// Middleware records request counts and latencies.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := ctx.Request.Method
		c.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		handler.ServeHTTP(ctx.Writer, ctx.Request)
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
