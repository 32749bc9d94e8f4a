// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hirelens"

// Booking outcomes used as the result label of hirelens_bookings_total.
const (
	BookingSuccess     = "success"
	BookingUnavailable = "unavailable"
	BookingRejected    = "rejected"
	BookingError       = "error"
)

// Collector records booking, signaling and HTTP metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	bookings       *prometheus.CounterVec
	bookingLatency prometheus.Histogram
	sessions       prometheus.Gauge
	sessionsTotal  prometheus.Counter
	relayed        *prometheus.CounterVec
	dropped        *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	emailsFailed   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Slot reservation attempts by result.",
		}, []string{"result"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_claim_seconds",
			Help:      "Time spent claiming a slot and creating the meeting.",
			Buckets:   prometheus.DefBuckets,
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signaling_sessions",
			Help:      "Currently registered signaling sessions.",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_sessions_total",
			Help:      "Signaling sessions registered since start.",
		}),
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_events_total",
			Help:      "Signaling events delivered by type.",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_dropped_total",
			Help:      "Signaling events dropped by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		emailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Notification e-mails that could not be sent.",
		}),
	}

	reg.MustRegister(
		c.bookings,
		c.bookingLatency,
		c.sessions,
		c.sessionsTotal,
		c.relayed,
		c.dropped,
		c.httpRequests,
		c.httpLatency,
		c.emailsFailed,
	)

	return c
}

// RecordBooking counts a reservation attempt.
func (c *Collector) RecordBooking(result string) {
	if c == nil {
		return
	}
	c.bookings.WithLabelValues(result).Inc()
}

// ObserveClaim records how long a slot claim took.
func (c *Collector) ObserveClaim(d time.Duration) {
	if c == nil {
		return
	}
	c.bookingLatency.Observe(d.Seconds())
}

// RecordEmailFailure counts a notification that could not be sent.
func (c *Collector) RecordEmailFailure() {
	if c == nil {
		return
	}
	c.emailsFailed.Inc()
}

func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessions.Inc()
	c.sessionsTotal.Inc()
}

func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessions.Dec()
}

// RecordRelayed counts an event delivered to a peer's send queue.
func (c *Collector) RecordRelayed(eventType string) {
	if c == nil {
		return
	}
	c.relayed.WithLabelValues(eventType).Inc()
}

// RecordDropped counts an event that was not delivered.
func (c *Collector) RecordDropped(reason string) {
	if c == nil {
		return
	}
	c.dropped.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest counts a served request. route is the matched mux pattern.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
