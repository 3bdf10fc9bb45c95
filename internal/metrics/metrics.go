// Package metrics registers the service's Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector the service exports.
type Metrics struct {
	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// TogglesTotal counts seat toggles by result (ok, unavailable).
	TogglesTotal *prometheus.CounterVec
	// EvictionsTotal counts seats evicted by reconciliation, by reason.
	EvictionsTotal *prometheus.CounterVec
	// SubmissionsTotal counts submissions by terminal status and reason.
	SubmissionsTotal *prometheus.CounterVec
	// TotalMismatches counts confirmed bookings whose server total
	// disagreed with the locally pinned one.
	TotalMismatches prometheus.Counter
}

// New creates the collectors and registers them with the default
// registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the collectors and registers them with reg.
// Tests pass a private registry to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		TogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_toggles_total",
				Help: "Seat toggle operations by result",
			},
			[]string{"result"},
		),
		EvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_evictions_total",
				Help: "Seats evicted by reconciliation, by reason",
			},
			[]string{"reason"},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_submissions_total",
				Help: "Booking submissions by terminal status and reason",
			},
			[]string{"status", "reason"},
		),
		TotalMismatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "booking_total_mismatches_total",
				Help: "Confirmed bookings whose server total disagreed with the pinned total",
			},
		),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TogglesTotal,
		m.EvictionsTotal,
		m.SubmissionsTotal,
		m.TotalMismatches,
	)
	return m
}
