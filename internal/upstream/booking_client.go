package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// idempotencyKeyHeader carries the client-generated key that makes a
// retried submission a no-op on the backend.
const idempotencyKeyHeader = "Idempotency-Key"

// BookingClient submits bookings to the booking API.  It implements
// session.BookingAPI.  Every non-transport outcome is mapped into a
// typed BookingResult; only transport failures (dial errors, timeouts)
// come back as errors, and those are retry-safe because the idempotency
// key travels with every attempt.
type BookingClient struct {
	c   httpClient
	log *zap.Logger
}

// NewBookingClient builds a client for the given base URL.  The timeout
// should be the longer submission bound, not the fetch bound: a booking
// write is worth waiting for.
func NewBookingClient(base, token string, timeout time.Duration, log *zap.Logger) *BookingClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingClient{c: newHTTPClient(base, token, timeout), log: log}
}

// bookingPayload mirrors the booking API response body.
type bookingPayload struct {
	BookingID  string `json:"booking_id"`
	Status     string `json:"status"`
	TotalCents uint32 `json:"total_cents"`
	Message    string `json:"message"`
}

// CreateBooking posts the request with the idempotency key attached.
// Status mapping:
//
//	201/200 confirmed      -> Confirmed (server total authoritative)
//	202 or payment_pending -> PaymentPending (accepted, payment handoff)
//	409                    -> Rejected / SeatsNoLongerAvailable
//	400, 404, 422          -> Rejected / ValidationFailed
//	anything 5xx or other  -> Rejected / ServerError
//
// A retried call with the same key returns the previously created
// booking, which surfaces here as a plain Confirmed result with the
// original booking id.
func (bc *BookingClient) CreateBooking(ctx context.Context, req model.BookingRequest, idempotencyKey string) (model.BookingResult, error) {
	resp, err := bc.c.post(ctx, "/bookings", req, map[string]string{idempotencyKeyHeader: idempotencyKey})
	if err != nil {
		return model.BookingResult{}, fmt.Errorf("create booking: %w", err)
	}
	defer resp.Body.Close()

	var payload bookingPayload
	if derr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); derr != nil {
		payload = bookingPayload{}
	}

	switch {
	case resp.StatusCode == http.StatusAccepted || payload.Status == "payment_pending":
		return model.BookingResult{
			Status:     model.BookingPaymentPending,
			BookingID:  payload.BookingID,
			TotalCents: payload.TotalCents,
			Message:    payload.Message,
		}, nil
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return model.BookingResult{
			Status:     model.BookingConfirmed,
			BookingID:  payload.BookingID,
			TotalCents: payload.TotalCents,
			Message:    payload.Message,
		}, nil
	case resp.StatusCode == http.StatusConflict:
		return model.BookingResult{
			Status:  model.BookingRejected,
			Reason:  model.ReasonSeatsNoLongerAvailable,
			Message: payload.Message,
		}, nil
	case resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusNotFound ||
		resp.StatusCode == http.StatusUnprocessableEntity:
		return model.BookingResult{
			Status:  model.BookingRejected,
			Reason:  model.ReasonValidationFailed,
			Message: payload.Message,
		}, nil
	default:
		bc.log.Error("booking backend error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", payload.Message))
		return model.BookingResult{
			Status:  model.BookingRejected,
			Reason:  model.ReasonServerError,
			Message: payload.Message,
		}, nil
	}
}
