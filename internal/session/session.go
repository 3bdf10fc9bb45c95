package session

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// PinnedSeat is a seat the user has selected, with the category and price
// captured at selection time.  Prices never float with later snapshots
// once pinned; only eviction removes a pinned seat.
type PinnedSeat struct {
	SeatID     string `json:"seat_id"`
	Category   string `json:"category"`
	PriceCents uint32 `json:"price_cents"`
}

// EvictionReason says why reconciliation removed a seat from the
// selection.
type EvictionReason string

const (
	// EvictedBooked - another user completed a booking for the seat.
	EvictedBooked EvictionReason = "BOOKED"
	// EvictedHeld - another user holds the seat.
	EvictedHeld EvictionReason = "HELD"
	// EvictedGone - the seat disappeared from the inventory entirely
	// (layout change, showtime cancelled).  Treated as unavailable.
	EvictedGone EvictionReason = "GONE"
)

// EvictedSeat records one seat lost during a reconciliation pass so the
// caller can tell the user which seats were taken and why.
type EvictedSeat struct {
	SeatID     string         `json:"seat_id"`
	PriceCents uint32         `json:"price_cents"`
	Reason     EvictionReason `json:"reason"`
}

// Observer receives session events.  Callbacks run synchronously on the
// goroutine that triggered the change, after the session lock has been
// released, so observers may call back into the session.
type Observer interface {
	// SelectionChanged fires after any toggle, clear or eviction that
	// altered the selection.  sel is in seating-chart order.
	SelectionChanged(sel []PinnedSeat, totalCents uint32)
	// SeatsEvicted fires once per reconciliation pass that evicted at
	// least one seat.  An empty pass fires nothing.
	SeatsEvicted(evicted []EvictedSeat)
	// BookingResolved fires when a submission reaches a terminal state.
	// draft is a copy of the draft as resolved; mutating it is safe.
	BookingResolved(draft *Draft, res model.BookingResult)
}

// SeatView is a seat as presented to the UI: the snapshot seat plus
// whether the current user has it selected.
type SeatView struct {
	model.Seat
	Selected bool `json:"selected"`
}

// Session is one user's booking session for one showtime.  It owns the
// last-known inventory snapshot, the current selection with pinned
// prices, and at most one booking draft.  All methods are safe for
// concurrent use; the session serialises state changes with a single
// mutex but releases it around network calls, so seat toggles stay
// responsive while a fetch or submission is in flight.
type Session struct {
	id         string
	ownerID    uint64
	showtimeID string

	booking BookingAPI
	store   DraftStore
	log     *zap.Logger

	fetchSeq atomic.Uint64

	mu        sync.Mutex
	snap      *Snapshot
	selected  map[string]PinnedSeat
	draft     *Draft
	inFlight  bool
	observers []Observer
	lastSeen  time.Time
}

// New constructs a session around an initial snapshot.  booking and
// store may not be nil; pass NopDraftStore when persistence is disabled.
func New(id string, ownerID uint64, snap *Snapshot, booking BookingAPI, store DraftStore, log *zap.Logger) *Session {
	if snap == nil {
		panic("nil snapshot passed to session.New")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		id:         id,
		ownerID:    ownerID,
		showtimeID: snap.ShowtimeID(),
		booking:    booking,
		store:      store,
		log:        log.With(zap.String("session_id", id), zap.String("showtime_id", snap.ShowtimeID())),
		snap:       snap,
		selected:   make(map[string]PinnedSeat),
		lastSeen:   time.Now().UTC(),
	}
	s.fetchSeq.Store(snap.Version())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// OwnerID returns the user the session belongs to.
func (s *Session) OwnerID() uint64 { return s.ownerID }

// ShowtimeID returns the showtime the session is booking.
func (s *Session) ShowtimeID() string { return s.showtimeID }

// Subscribe registers an observer for session events.
func (s *Session) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Touch marks the session as recently used.  The hub's sweep loop
// removes sessions that have not been touched within the TTL.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now().UTC()
	s.mu.Unlock()
}

// LastSeen returns the time of the last Touch.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// NextFetchSeq hands out a monotonically increasing sequence number.
// Callers tag an inventory fetch with it before issuing the request, so
// a version-less backend still gets a meaningful stale-response guard: a
// late reply from an earlier fetch carries a lower number and is
// discarded by ApplySnapshot.
func (s *Session) NextFetchSeq() uint64 { return s.fetchSeq.Add(1) }

// SnapshotVersion returns the version of the effective snapshot.
func (s *Session) SnapshotVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Version()
}

// Toggle flips membership of the given seat in the selection.  Selecting
// pins the seat's current category and price.  Deselecting always
// succeeds for a selected seat.  Selecting fails with ErrSeatUnavailable
// when the seat is not available in the last-known snapshot or is absent
// from it; an absent seat never panics, the seat list can legitimately
// shrink between snapshots.
func (s *Session) Toggle(seatID string) error {
	s.mu.Lock()
	if _, ok := s.selected[seatID]; ok {
		delete(s.selected, seatID)
		sel, total := s.selectionLocked()
		obs := s.observersLocked()
		s.mu.Unlock()
		notifySelection(obs, sel, total)
		return nil
	}
	seat, ok := s.snap.Seat(seatID)
	if !ok || seat.Status != model.SeatAvailable {
		s.mu.Unlock()
		return ErrSeatUnavailable
	}
	s.selected[seatID] = PinnedSeat{SeatID: seat.ID, Category: seat.Category, PriceCents: seat.PriceCents}
	sel, total := s.selectionLocked()
	obs := s.observersLocked()
	s.mu.Unlock()
	notifySelection(obs, sel, total)
	return nil
}

// Clear empties the selection.  Always succeeds; used when the user
// switches showtime or date.
func (s *Session) Clear() {
	s.mu.Lock()
	changed := len(s.selected) > 0
	s.selected = make(map[string]PinnedSeat)
	obs := s.observersLocked()
	s.mu.Unlock()
	if changed {
		notifySelection(obs, nil, 0)
	}
}

// TotalCents returns the sum of pinned prices over the current
// selection.  Zero for an empty selection.
func (s *Session) TotalCents() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// Selected returns the pinned seats in seating-chart order.
func (s *Session) Selected() []PinnedSeat {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, _ := s.selectionLocked()
	return sel
}

// Seats returns the effective seat view for the UI: every seat of the
// current snapshot in chart order, flagged with the user's selection.
func (s *Session) Seats() []SeatView {
	s.mu.Lock()
	defer s.mu.Unlock()
	seats := s.snap.Seats()
	out := make([]SeatView, 0, len(seats))
	for _, seat := range seats {
		_, sel := s.selected[seat.ID]
		out = append(out, SeatView{Seat: seat, Selected: sel})
	}
	return out
}

// totalLocked sums pinned prices.  Caller holds mu.
func (s *Session) totalLocked() uint32 {
	var total uint32
	for _, p := range s.selected {
		total += p.PriceCents
	}
	return total
}

// selectionLocked returns the pinned seats sorted by seating-chart
// position plus the current total.  Caller holds mu.
func (s *Session) selectionLocked() ([]PinnedSeat, uint32) {
	sel := make([]PinnedSeat, 0, len(s.selected))
	for _, p := range s.selected {
		sel = append(sel, p)
	}
	snap := s.snap
	for i := 1; i < len(sel); i++ {
		for j := i; j > 0 && snap.chartPos(sel[j].SeatID) < snap.chartPos(sel[j-1].SeatID); j-- {
			sel[j], sel[j-1] = sel[j-1], sel[j]
		}
	}
	return sel, s.totalLocked()
}

// observersLocked copies the observer list.  Caller holds mu.
func (s *Session) observersLocked() []Observer {
	obs := make([]Observer, len(s.observers))
	copy(obs, s.observers)
	return obs
}

func notifySelection(obs []Observer, sel []PinnedSeat, total uint32) {
	for _, o := range obs {
		o.SelectionChanged(sel, total)
	}
}

func notifyEvicted(obs []Observer, evicted []EvictedSeat) {
	if len(evicted) == 0 {
		return
	}
	for _, o := range obs {
		o.SeatsEvicted(evicted)
	}
}

func notifyResolved(obs []Observer, draft *Draft, res model.BookingResult) {
	for _, o := range obs {
		o.BookingResolved(draft, res)
	}
}
