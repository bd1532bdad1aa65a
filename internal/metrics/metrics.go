// Package metrics defines the Prometheus instruments exported by the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service records to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	DataLoads          *prometheus.CounterVec
	BlobListFailures   prometheus.Counter
	ContactSubmissions *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	RateLimited        *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DataLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_data_loads_total",
			Help: "Data document loads by the source that served them",
		}, []string{"source"}),
		BlobListFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "blob_list_failures_total",
			Help: "Object storage listings that failed and were served as empty",
		}),
		ContactSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome",
		}, []string{"outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		}, []string{"route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache name and result (hit or miss)",
		}, []string{"cache", "result"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter by endpoint",
		}, []string{"endpoint"}),
	}
}

// RecordDataLoad counts a document load served from source.
func (m *Metrics) RecordDataLoad(source string) {
	if m == nil {
		return
	}
	m.DataLoads.WithLabelValues(source).Inc()
}

// RecordBlobListFailure counts a failed storage listing.
func (m *Metrics) RecordBlobListFailure() {
	if m == nil {
		return
	}
	m.BlobListFailures.Inc()
}

// RecordContact counts a contact submission. Outcome is "accepted", "invalid" or "error".
func (m *Metrics) RecordContact(outcome string) {
	if m == nil {
		return
	}
	m.ContactSubmissions.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one served request.
// Call with time.Now() taken before the handler ran.
func (m *Metrics) ObserveRequest(route string, status int, start time.Time) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// RecordCacheLookup counts a hit or miss on the named cache.
func (m *Metrics) RecordCacheLookup(name string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(name, result).Inc()
}

// RecordRateLimited counts a request rejected by the limiter.
func (m *Metrics) RecordRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(endpoint).Inc()
}
