// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds custom Prometheus metrics.
type MetricsManager struct {
	Registry            *prometheus.Registry
	ListingsCreated     prometheus.Counter
	ListingsUpdated     prometheus.Counter
	ListingsDeleted     prometheus.Counter
	UploadsTotal        *prometheus.CounterVec   // by bucket and outcome
	AuthEventsTotal     *prometheus.CounterVec   // by event
	HTTPRequestLatency  *prometheus.HistogramVec // by method, route and status
	SubmissionsRejected *prometheus.CounterVec   // busy submissions by route
}

// NewMetricsManager initializes and registers custom Prometheus metrics on a
// private registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_updates_total",
			Help:      "Total number of listings updated.",
		}),
		ListingsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_deletes_total",
			Help:      "Total number of listings deleted.",
		}),
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by bucket and outcome.",
		}, []string{"bucket", "outcome"}),
		AuthEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Authentication events by kind.",
		}, []string{"event"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		SubmissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Submissions rejected because another one was in progress.",
		}, []string{"action"}),
	}

	registry.MustRegister(
		m.ListingsCreated,
		m.ListingsUpdated,
		m.ListingsDeleted,
		m.UploadsTotal,
		m.AuthEventsTotal,
		m.HTTPRequestLatency,
		m.SubmissionsRejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveListing counts a listing write. action is a listing event type.
func (m *MetricsManager) ObserveListing(action string) {
	switch action {
	case "listing.created":
		m.ListingsCreated.Inc()
	case "listing.updated":
		m.ListingsUpdated.Inc()
	case "listing.deleted":
		m.ListingsDeleted.Inc()
	}
}

// ObserveUpload counts an upload attempt.
func (m *MetricsManager) ObserveUpload(bucket, outcome string) {
	m.UploadsTotal.WithLabelValues(bucket, outcome).Inc()
}

// ObserveAuth counts an auth event.
func (m *MetricsManager) ObserveAuth(event string) {
	m.AuthEventsTotal.WithLabelValues(event).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *MetricsManager) ObserveRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveRejectedSubmission counts a submission refused as busy.
func (m *MetricsManager) ObserveRejectedSubmission(action string) {
	m.SubmissionsRejected.WithLabelValues(action).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
