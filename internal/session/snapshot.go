// Package session implements the seat booking session: an explicit state
// machine for seat selection, snapshot reconciliation and booking
// submission, independent of any HTTP or rendering layer.  Presentation
// code drives it through a small set of operations and observes it via
// callbacks; it never owns reconciliation logic itself.
package session

import (
	"time"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// Snapshot is an immutable point-in-time view of the seat inventory for
// one showtime.  A snapshot is never mutated after construction; a newer
// snapshot replaces the old one wholesale, so readers can never observe a
// torn update.  Seats keep the order of the upstream response, which is
// the seating-chart order.
type Snapshot struct {
	showtimeID string
	version    uint64
	fetchedAt  time.Time
	seats      []model.Seat
	index      map[string]int
}

// NewSnapshot builds a snapshot from the given seats.  The seat slice is
// copied so later mutation by the caller cannot leak into the snapshot.
// Version must increase monotonically per showtime; sessions discard
// snapshots whose version is not greater than the one they already hold.
func NewSnapshot(showtimeID string, version uint64, seats []model.Seat, fetchedAt time.Time) *Snapshot {
	cp := make([]model.Seat, len(seats))
	copy(cp, seats)
	idx := make(map[string]int, len(cp))
	for i, s := range cp {
		idx[s.ID] = i
	}
	return &Snapshot{
		showtimeID: showtimeID,
		version:    version,
		fetchedAt:  fetchedAt,
		seats:      cp,
		index:      idx,
	}
}

// ShowtimeID returns the showtime this snapshot belongs to.
func (s *Snapshot) ShowtimeID() string { return s.showtimeID }

// Version returns the monotonically increasing inventory version.
func (s *Snapshot) Version() uint64 { return s.version }

// FetchedAt returns when the snapshot was taken.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Len returns the number of seats in the snapshot.
func (s *Snapshot) Len() int { return len(s.seats) }

// Seat looks up a seat by identifier.  The second return value is false
// when the seat does not exist in this snapshot; seat lists can shrink
// between snapshots and callers must treat an absent seat as unavailable.
func (s *Snapshot) Seat(id string) (model.Seat, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Seat{}, false
	}
	return s.seats[i], true
}

// Seats returns a copy of all seats in seating-chart order.
func (s *Snapshot) Seats() []model.Seat {
	cp := make([]model.Seat, len(s.seats))
	copy(cp, s.seats)
	return cp
}

// chartPos returns the seating-chart position of a seat id, or the
// largest int when the seat is unknown so unknown ids sort last.
func (s *Snapshot) chartPos(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return int(^uint(0) >> 1)
}

// withVersion returns a copy of the snapshot carrying the given version.
// Used when the upstream response did not include a version and the
// caller assigns a fetch sequence number instead.
func (s *Snapshot) withVersion(v uint64) *Snapshot {
	cp := *s
	cp.version = v
	return &cp
}
