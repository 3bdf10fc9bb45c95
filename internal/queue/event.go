// Package queue defines the message payloads exchanged over the broker
// and the consumer/publisher that move them.  The broker is the push
// variant of the snapshot transport: the reconciliation protocol does
// not care whether a snapshot arrived by polling or as a seat.updated
// message.
package queue

// SeatPayload is one seat inside a SeatUpdatedEvent.
type SeatPayload struct {
	SeatNumber string `json:"seat_number"`
	Category   string `json:"category"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
}

// SeatUpdatedEvent carries a full-replacement inventory snapshot for one
// showtime.  Partial diffs are deliberately not supported; a full list
// keeps the snapshot semantics (no torn updates) identical to a fetch.
type SeatUpdatedEvent struct {
	ShowtimeID string        `json:"showtime_id"`
	Version    uint64        `json:"version"`
	Seats      []SeatPayload `json:"seats"`
}

// BookingConfirmedEvent is published when a submission resolves as
// confirmed (or accepted pending payment).  It contains enough for
// downstream consumers to notify or run analytics without querying
// anything.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	ShowtimeID  string   `json:"showtime_id"`
	SeatLabels  []string `json:"seats"`
	TotalCents  uint32   `json:"total_cents"`
	Status      string   `json:"status"`
	ConfirmedAt string   `json:"confirmed_at"`
}
