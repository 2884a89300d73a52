// Package metrics collects and exposes Prometheus metrics for the HTTP
// surface and the external provider client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    prometheus.Histogram
	providerCalls   *prometheus.CounterVec
	providerLatency prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipefinder_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipefinder_http_request_duration_seconds",
			Help:    "HTTP request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipefinder_provider_calls_total",
			Help: "Recipe provider round trips by HTTP status (0 = transport error).",
		}, []string{"status"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipefinder_provider_latency_seconds",
			Help:    "Recipe provider round-trip latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(c.httpRequests, c.httpDuration, c.providerCalls, c.providerLatency)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.Observe(d.Seconds())
}

func (c *Collector) RecordProviderCall(status int, d time.Duration) {
	c.providerCalls.WithLabelValues(strconv.Itoa(status)).Inc()
	c.providerLatency.Observe(d.Seconds())
}

// Handler serves the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
