package session

import (
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// ApplySnapshot installs a new inventory snapshot and reconciles the
// live selection against it.  The returned eviction list names every
// selected seat that is no longer available (booked, held by another
// user, or absent from the new snapshot); surviving seats keep their
// pinned prices unchanged.  The boolean reports whether the snapshot was
// adopted: a snapshot whose version is not greater than the current one
// is a stale out-of-order reply and is discarded untouched.
//
// Reconciliation is idempotent (re-applying the same snapshot evicts
// nothing further, the version guard rejects it outright) and
// order-independent within a pass: every decision is made against the
// same snapshot, so evicting one seat cannot change the verdict on
// another.  An empty eviction list is the success case; reconciliation
// never fails.
func (s *Session) ApplySnapshot(snap *Snapshot) ([]EvictedSeat, bool) {
	if snap == nil || snap.ShowtimeID() != s.showtimeID {
		return nil, false
	}
	s.mu.Lock()
	if snap.Version() <= s.snap.Version() {
		cur := s.snap.Version()
		s.mu.Unlock()
		s.log.Debug("discarding stale snapshot",
			zap.Uint64("got_version", snap.Version()),
			zap.Uint64("have_version", cur))
		return nil, false
	}
	s.snap = snap
	evicted := s.reconcileLocked()
	sel, total := s.selectionLocked()
	obs := s.observersLocked()
	s.mu.Unlock()

	if len(evicted) > 0 {
		s.log.Info("seats evicted by reconciliation",
			zap.Uint64("snapshot_version", snap.Version()),
			zap.Int("evicted", len(evicted)))
		notifyEvicted(obs, evicted)
		notifySelection(obs, sel, total)
	}
	return evicted, true
}

// ForceReconcile re-runs the eviction pass against the snapshot the
// session already holds.  Used after the backend rejects a submission
// with SeatsNoLongerAvailable: the authoritative recheck found a
// conflict our snapshot may not show yet, so the caller typically
// refreshes the inventory first and falls back to this when the refresh
// fails.
func (s *Session) ForceReconcile() []EvictedSeat {
	s.mu.Lock()
	evicted := s.reconcileLocked()
	sel, total := s.selectionLocked()
	obs := s.observersLocked()
	s.mu.Unlock()
	if len(evicted) > 0 {
		notifyEvicted(obs, evicted)
		notifySelection(obs, sel, total)
	}
	return evicted
}

// reconcileLocked evicts selected seats that the current snapshot no
// longer reports as available.  All verdicts are taken against the same
// snapshot; the selection map is only mutated after the scan.  Caller
// holds mu.
func (s *Session) reconcileLocked() []EvictedSeat {
	var evicted []EvictedSeat
	for id, pinned := range s.selected {
		seat, ok := s.snap.Seat(id)
		switch {
		case !ok:
			evicted = append(evicted, EvictedSeat{SeatID: id, PriceCents: pinned.PriceCents, Reason: EvictedGone})
		case seat.Status == model.SeatBooked:
			evicted = append(evicted, EvictedSeat{SeatID: id, PriceCents: pinned.PriceCents, Reason: EvictedBooked})
		case seat.Status == model.SeatHeld:
			evicted = append(evicted, EvictedSeat{SeatID: id, PriceCents: pinned.PriceCents, Reason: EvictedHeld})
		}
	}
	for _, ev := range evicted {
		delete(s.selected, ev.SeatID)
	}
	// Deterministic output order: chart position of the evicting snapshot.
	snap := s.snap
	for i := 1; i < len(evicted); i++ {
		for j := i; j > 0 && snap.chartPos(evicted[j].SeatID) < snap.chartPos(evicted[j-1].SeatID); j-- {
			evicted[j], evicted[j-1] = evicted[j-1], evicted[j]
		}
	}
	return evicted
}
