package session

import (
	"context"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// InventoryAPI fetches the full seat inventory for a showtime.  The
// implementation lives in the upstream package; tests substitute fakes.
// An unknown showtime must come back as an error exposing NotFound()
// true (upstream.NotFoundError does); anything transient is a plain
// transport error.
type InventoryAPI interface {
	FetchInventory(ctx context.Context, showtimeID string) (*Snapshot, error)
}

// BookingAPI submits a booking request to the booking backend.  The
// idempotency key must be attached to the outbound request so that a
// retried call cannot create two bookings for one draft.  A returned
// error means the request may or may not have reached the backend
// (transport failure or timeout); callers translate it into a
// NetworkFailure rejection and keep the key for a safe retry.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req model.BookingRequest, idempotencyKey string) (model.BookingResult, error)
}

// DraftStore persists drafts and their outcomes so that an idempotency
// key survives a process restart and an abandoned submission can still be
// retried safely.  Implementations must be safe for concurrent use.  The
// nop store is used when the service runs without a database.
type DraftStore interface {
	SaveDraft(ctx context.Context, d *Draft) error
	UpdateDraftStatus(ctx context.Context, draftID string, status DraftStatus, reason model.RejectReason) error
	RecordOutcome(ctx context.Context, d *Draft, res model.BookingResult) error
}

// NopDraftStore satisfies DraftStore without persisting anything.
type NopDraftStore struct{}

// SaveDraft implements DraftStore.
func (NopDraftStore) SaveDraft(context.Context, *Draft) error { return nil }

// UpdateDraftStatus implements DraftStore.
func (NopDraftStore) UpdateDraftStatus(context.Context, string, DraftStatus, model.RejectReason) error {
	return nil
}

// RecordOutcome implements DraftStore.
func (NopDraftStore) RecordOutcome(context.Context, *Draft, model.BookingResult) error { return nil }
