// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the cache, services and HTTP
// middleware.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheError(op string)
	RecordSessionReissued()
	RecordAuthFailure(reason string)
	RecordMealAggregated(op string)
	RecordHTTPRequest(route, method string, status int)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheErrors    *prometheus.CounterVec
	reissues       prometheus.Counter
	authFailures   *prometheus.CounterVec
	mealsAggregate *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealtracker_session_cache_hits_total",
			Help: "Session lookups answered by the token cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealtracker_session_cache_misses_total",
			Help: "Session lookups not found in the token cache.",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealtracker_session_cache_errors_total",
			Help: "Token cache operations that failed, by operation.",
		}, []string{"op"}),
		reissues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealtracker_session_reissued_total",
			Help: "Expired session tokens replaced during authentication.",
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealtracker_auth_failures_total",
			Help: "Rejected authentication attempts, by reason.",
		}, []string{"reason"}),
		mealsAggregate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealtracker_meals_aggregated_total",
			Help: "Meal nutrient aggregations committed, by operation.",
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealtracker_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.cacheErrors,
		c.reissues,
		c.authFailures,
		c.mealsAggregate,
		c.httpRequests,
	)

	return c
}

func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

func (c *Collector) RecordCacheError(op string) {
	c.cacheErrors.WithLabelValues(op).Inc()
}

func (c *Collector) RecordSessionReissued() {
	c.reissues.Inc()
}

func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordMealAggregated(op string) {
	c.mealsAggregate.WithLabelValues(op).Inc()
}

func (c *Collector) RecordHTTPRequest(route, method string, status int) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordCacheHit()                       {}
func (Nop) RecordCacheMiss()                      {}
func (Nop) RecordCacheError(string)               {}
func (Nop) RecordSessionReissued()                {}
func (Nop) RecordAuthFailure(string)              {}
func (Nop) RecordMealAggregated(string)           {}
func (Nop) RecordHTTPRequest(string, string, int) {}
