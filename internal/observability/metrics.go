package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	requestsTotal       *prometheus.CounterVec
	latencySeconds      *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec
	hourLogReviewsTotal *prometheus.CounterVec
	waiverGrantsTotal   prometheus.Counter
	announcementReqs    *prometheus.CounterVec
	announcementLatency prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of portal API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_latency_seconds",
			Help:    "Latency distribution for portal API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of error responses returned by portal endpoints.",
		}, []string{"method", "route", "status"})

		hourLogReviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_hour_log_reviews_total",
			Help: "Hour log review decisions by action.",
		}, []string{"action"})

		waiverGrantsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_waiver_grants_total",
			Help: "Number of membership fee waivers granted through volunteering.",
		})

		announcementReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_announcement_requests_total",
			Help: "Announcement list requests by cache outcome.",
		}, []string{"result"})

		announcementLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_announcement_latency_seconds",
			Help:    "Latency distribution for announcement list requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			hourLogReviewsTotal,
			waiverGrantsTotal,
			announcementReqs,
			announcementLatency,
		)
	})
}

// Requests exposes the counter for portal requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for portal requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for portal error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// HourLogReviews exposes the review decision counter.
func HourLogReviews() *prometheus.CounterVec {
	RegisterMetrics()
	return hourLogReviewsTotal
}

// WaiverGrants exposes the waiver grant counter.
func WaiverGrants() prometheus.Counter {
	RegisterMetrics()
	return waiverGrantsTotal
}

// AnnouncementsRequests exposes the announcement cache-outcome counter.
func AnnouncementsRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return announcementReqs
}

// AnnouncementsLatency exposes the announcement latency histogram.
func AnnouncementsLatency() prometheus.Histogram {
	RegisterMetrics()
	return announcementLatency
}
