package model

import "time"

// BookingStatus is the terminal state of a booking submission as reported
// by the booking backend.
type BookingStatus string

const (
	// BookingConfirmed means the backend created (or, on an idempotent
	// retry, already held) the booking.
	BookingConfirmed BookingStatus = "CONFIRMED"
	// BookingPaymentPending means the booking was accepted but payment has
	// not completed yet.  This is a handoff to the payment flow, not a
	// failure.
	BookingPaymentPending BookingStatus = "PAYMENT_PENDING"
	// BookingRejected means the submission failed; Reason says why.
	BookingRejected BookingStatus = "REJECTED"
)

// RejectReason classifies why a submission was rejected.  Handlers and
// callers must switch on every value; nothing here is thrown.
type RejectReason string

const (
	// ReasonSeatsNoLongerAvailable: the backend's authoritative recheck
	// found a conflict.  The session runs a forced reconciliation pass and
	// a fresh checkout is required before resubmission.
	ReasonSeatsNoLongerAvailable RejectReason = "SEATS_NO_LONGER_AVAILABLE"
	// ReasonValidationFailed: the draft was malformed or empty.
	ReasonValidationFailed RejectReason = "VALIDATION_FAILED"
	// ReasonNetworkFailure: transient transport error or timeout.  The
	// idempotency key stays valid and the same draft may be resubmitted.
	ReasonNetworkFailure RejectReason = "NETWORK_FAILURE"
	// ReasonServerError: the backend failed.  Fatal for this draft; a new
	// checkout is required before trying again.
	ReasonServerError RejectReason = "SERVER_ERROR"
)

// BookingRequest is the payload sent to the booking backend when a draft
// is submitted.  The idempotency key travels in a header, not in the
// body, so it is not part of this struct.
type BookingRequest struct {
	ShowtimeID string    `json:"showtime_id"`
	UserID     uint64    `json:"user_id"`
	SeatIDs    []string  `json:"seat_ids"`
	TotalCents uint32    `json:"total_cents"`
	BookingAt  time.Time `json:"booking_at"`
}

// BookingResult is the typed outcome of a submission.  For Confirmed and
// PaymentPending results TotalCents carries the server-computed total,
// which is authoritative over the locally pinned one.
type BookingResult struct {
	Status     BookingStatus `json:"status"`
	BookingID  string        `json:"booking_id,omitempty"`
	TotalCents uint32        `json:"total_cents,omitempty"`
	Reason     RejectReason  `json:"reason,omitempty"`
	Message    string        `json:"message,omitempty"`
}
