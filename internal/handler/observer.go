package handler

import (
	"github.com/iliyamo/cinema-booking-session/internal/metrics"
	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
)

// MetricsObserver feeds session events into the Prometheus collectors.
// It is subscribed to every session at creation time.
type MetricsObserver struct {
	m *metrics.Metrics
}

// NewMetricsObserver constructs the observer.
func NewMetricsObserver(m *metrics.Metrics) *MetricsObserver {
	return &MetricsObserver{m: m}
}

// SelectionChanged implements session.Observer.  Selection churn is
// already counted per toggle in the handler.
func (o *MetricsObserver) SelectionChanged([]session.PinnedSeat, uint32) {}

// SeatsEvicted implements session.Observer.
func (o *MetricsObserver) SeatsEvicted(evicted []session.EvictedSeat) {
	for _, e := range evicted {
		o.m.EvictionsTotal.WithLabelValues(string(e.Reason)).Inc()
	}
}

// BookingResolved implements session.Observer.
func (o *MetricsObserver) BookingResolved(draft *session.Draft, res model.BookingResult) {
	o.m.SubmissionsTotal.WithLabelValues(string(res.Status), string(res.Reason)).Inc()
	switch res.Status {
	case model.BookingConfirmed, model.BookingPaymentPending:
		if res.TotalCents != draft.TotalCents {
			o.m.TotalMismatches.Inc()
		}
	}
}
