package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// DraftStatus is the lifecycle state of a booking draft.
type DraftStatus string

const (
	// DraftOpen - created by Checkout, not yet submitted.
	DraftOpen DraftStatus = "DRAFT"
	// DraftSubmitting - a submission is in flight.  Only one draft per
	// session may be in this state.
	DraftSubmitting DraftStatus = "SUBMITTING"
	// DraftConfirmed - the backend accepted the booking (including the
	// payment-pending handoff).
	DraftConfirmed DraftStatus = "CONFIRMED"
	// DraftRejected - the submission resolved with a rejection.
	DraftRejected DraftStatus = "REJECTED"
)

// Draft is a finalized selection on its way to becoming a booking.  It
// pins the seats, the locally computed total and a client-generated
// idempotency key.  The key is attached to every submission attempt for
// this draft, so a retried network call cannot create two bookings.
type Draft struct {
	ID               string             `json:"id"`
	SessionID        string             `json:"session_id"`
	ShowtimeID       string             `json:"showtime_id"`
	UserID           uint64             `json:"user_id"`
	Seats            []PinnedSeat       `json:"seats"`
	TotalCents       uint32             `json:"total_cents"`
	IdempotencyKey   string             `json:"idempotency_key"`
	Status           DraftStatus        `json:"status"`
	Reason           model.RejectReason `json:"reason,omitempty"`
	BookingID        string             `json:"booking_id,omitempty"`
	ServerTotalCents uint32             `json:"server_total_cents,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// resubmittable reports whether Submit may run this draft (again).  A
// draft rejected for a transient network failure keeps its key and may
// be retried; every other rejection requires a fresh checkout.
func (d *Draft) resubmittable() bool {
	switch d.Status {
	case DraftOpen:
		return true
	case DraftRejected:
		return d.Reason == model.ReasonNetworkFailure
	default:
		return false
	}
}

// clone returns a deep copy so callers cannot mutate session state
// through a returned draft.
func (d *Draft) clone() *Draft {
	cp := *d
	cp.Seats = make([]PinnedSeat, len(d.Seats))
	copy(cp.Seats, d.Seats)
	return &cp
}

// sameSeats reports whether the draft pins exactly the given selection.
func (d *Draft) sameSeats(sel []PinnedSeat) bool {
	if len(d.Seats) != len(sel) {
		return false
	}
	have := make(map[string]uint32, len(d.Seats))
	for _, p := range d.Seats {
		have[p.SeatID] = p.PriceCents
	}
	for _, p := range sel {
		if price, ok := have[p.SeatID]; !ok || price != p.PriceCents {
			return false
		}
	}
	return true
}

// Checkout finalizes the current selection into a draft.  An empty
// selection fails with ErrEmptySelection and never reaches the network.
// When an open draft (or one rejected only by a network failure) already
// pins exactly the current selection, that draft is returned unchanged:
// its idempotency key must survive, because the previous attempt may
// have committed on the backend.  Any other existing draft is
// superseded by a new one with a fresh key.
func (s *Session) Checkout(ctx context.Context) (*Draft, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrAlreadyInFlight
	}
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptySelection
	}
	sel, total := s.selectionLocked()
	if s.draft != nil && s.draft.resubmittable() && s.draft.sameSeats(sel) {
		d := s.draft.clone()
		s.mu.Unlock()
		return d, nil
	}
	d := &Draft{
		ID:             uuid.NewString(),
		SessionID:      s.id,
		ShowtimeID:     s.showtimeID,
		UserID:         s.ownerID,
		Seats:          sel,
		TotalCents:     total,
		IdempotencyKey: uuid.NewString(),
		Status:         DraftOpen,
		CreatedAt:      time.Now().UTC(),
	}
	s.draft = d
	out := d.clone()
	s.mu.Unlock()

	if err := s.store.SaveDraft(ctx, out); err != nil {
		// Persistence is best effort; the in-memory draft still guards
		// this process.  Without the row a restart loses the key, so say
		// so loudly.
		s.log.Error("persist draft failed", zap.String("draft_id", out.ID), zap.Error(err))
	}
	return out, nil
}

// Draft returns a copy of the current draft, or nil when none exists.
func (s *Session) Draft() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return s.draft.clone()
}

// Submit runs the current draft to a terminal state.  Local guards are
// returned as errors and never touch the network: ErrNoDraft when
// Checkout has not been called, ErrAlreadyInFlight while a submission is
// running, ErrDraftTerminal when the draft resolved with a reason that
// forbids reuse of its key.  Everything else comes back as a typed
// BookingResult so the caller is forced to handle every reason.
//
// Once the guards pass, the submission is detached from ctx's
// cancellation and runs to a terminal state on its own; only the
// upstream client's timeout bounds it.
//
// A transport failure or timeout resolves to Rejected/NetworkFailure
// with the idempotency key left valid: the backend may have committed
// the booking, and a retry with the same key must return the existing
// outcome instead of creating a duplicate.  A SeatsNoLongerAvailable
// rejection drops the draft and immediately re-runs reconciliation so
// the user confirms a fresh, conflict-free selection before resubmitting.
func (s *Session) Submit(ctx context.Context) (model.BookingResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return model.BookingResult{}, ErrAlreadyInFlight
	}
	d := s.draft
	if d == nil {
		s.mu.Unlock()
		return model.BookingResult{}, ErrNoDraft
	}
	if !d.resubmittable() {
		s.mu.Unlock()
		return model.BookingResult{}, ErrDraftTerminal
	}
	if len(d.Seats) == 0 {
		s.mu.Unlock()
		return model.BookingResult{Status: model.BookingRejected, Reason: model.ReasonValidationFailed, Message: "empty draft"}, nil
	}
	d.Status = DraftSubmitting
	s.inFlight = true
	req := model.BookingRequest{
		ShowtimeID: d.ShowtimeID,
		UserID:     d.UserID,
		SeatIDs:    make([]string, 0, len(d.Seats)),
		TotalCents: d.TotalCents,
		BookingAt:  time.Now().UTC(),
	}
	for _, p := range d.Seats {
		req.SeatIDs = append(req.SeatIDs, p.SeatID)
	}
	key := d.IdempotencyKey
	s.mu.Unlock()

	// From here the submission runs to a terminal state even if the
	// caller goes away: a disconnect mid-POST must not abort a booking
	// the backend may be committing.  The upstream client's own timeout
	// still bounds the call.
	ctx = context.WithoutCancel(ctx)

	if err := s.store.UpdateDraftStatus(ctx, d.ID, DraftSubmitting, ""); err != nil {
		s.log.Error("persist draft status failed", zap.String("draft_id", d.ID), zap.Error(err))
	}

	// The network call runs without the lock; toggles stay responsive.
	// The inFlight flag keeps a second Submit out until we resolve.
	res, err := s.booking.CreateBooking(ctx, req, key)
	if err != nil {
		res = model.BookingResult{
			Status:  model.BookingRejected,
			Reason:  model.ReasonNetworkFailure,
			Message: err.Error(),
		}
	}

	s.mu.Lock()
	s.inFlight = false
	var evicted []EvictedSeat
	switch res.Status {
	case model.BookingConfirmed, model.BookingPaymentPending:
		d.Status = DraftConfirmed
		d.BookingID = res.BookingID
		d.ServerTotalCents = res.TotalCents
		if res.TotalCents != d.TotalCents {
			// Server total is authoritative; a mismatch is an integrity
			// warning, not a blocker.
			s.log.Warn("booking total mismatch",
				zap.String("draft_id", d.ID),
				zap.Uint32("local_total_cents", d.TotalCents),
				zap.Uint32("server_total_cents", res.TotalCents))
		}
	case model.BookingRejected:
		d.Status = DraftRejected
		d.Reason = res.Reason
		switch res.Reason {
		case model.ReasonNetworkFailure:
			// Key stays valid; the same draft may be resubmitted.
		case model.ReasonSeatsNoLongerAvailable:
			s.draft = nil
			evicted = s.reconcileLocked()
		default:
			// ValidationFailed / ServerError: a new checkout is required.
			s.draft = nil
		}
	}
	done := d.clone()
	sel, total := s.selectionLocked()
	obs := s.observersLocked()
	s.mu.Unlock()

	if err := s.store.RecordOutcome(ctx, done, res); err != nil {
		s.log.Error("persist outcome failed", zap.String("draft_id", done.ID), zap.Error(err))
	}
	s.log.Info("submission resolved",
		zap.String("draft_id", done.ID),
		zap.String("status", string(res.Status)),
		zap.String("reason", string(res.Reason)),
		zap.String("booking_id", res.BookingID))

	notifyEvicted(obs, evicted)
	if len(evicted) > 0 {
		notifySelection(obs, sel, total)
	}
	notifyResolved(obs, done, res)
	return res, nil
}
