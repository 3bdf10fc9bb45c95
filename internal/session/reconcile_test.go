package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
)

func TestApplySnapshotRejectsStaleVersions(t *testing.T) {
	s := newTestSession(t, snapAt(5, nil), nil)
	require.NoError(t, s.Toggle("A1"))

	// Same version: out-of-order duplicate, discarded.
	evicted, ok := s.ApplySnapshot(snapAt(5, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked // would evict A1 if adopted
	}))
	assert.False(t, ok)
	assert.Empty(t, evicted)
	assert.Equal(t, uint64(5), s.SnapshotVersion())
	assert.Len(t, s.Selected(), 1)

	// Lower version: late reply from an earlier fetch, discarded.
	evicted, ok = s.ApplySnapshot(snapAt(3, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked
	}))
	assert.False(t, ok)
	assert.Empty(t, evicted)
	assert.Len(t, s.Selected(), 1)
}

func TestApplySnapshotIgnoresOtherShowtimes(t *testing.T) {
	s := newTestSession(t, snapAt(1, nil), nil)
	other := session.NewSnapshot("show-2", 9, baseSeats(), snapAt(1, nil).FetchedAt())
	_, ok := s.ApplySnapshot(other)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), s.SnapshotVersion())
}

func TestReconcileEvictsTakenSeats(t *testing.T) {
	s := newTestSession(t, snapAt(1, nil), nil)
	require.NoError(t, s.Toggle("A1"))
	require.NoError(t, s.Toggle("A2"))
	require.NoError(t, s.Toggle("B1"))

	// A1 gets booked and A2 held while the user deliberates.
	evicted, ok := s.ApplySnapshot(snapAt(2, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked
		seats[1].Status = model.SeatHeld
	}))
	require.True(t, ok)
	require.Len(t, evicted, 2)
	assert.Equal(t, "A1", evicted[0].SeatID)
	assert.Equal(t, session.EvictedBooked, evicted[0].Reason)
	assert.Equal(t, "A2", evicted[1].SeatID)
	assert.Equal(t, session.EvictedHeld, evicted[1].Reason)

	// B1 survived with its pinned price.
	sel := s.Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "B1", sel[0].SeatID)
	assert.Equal(t, uint32(1800), s.TotalCents())
}

func TestReconcileEvictsAbsentSeatAsGone(t *testing.T) {
	s := newTestSession(t, snapAt(1, nil), nil)
	require.NoError(t, s.Toggle("B1"))

	// The new chart no longer contains row B at all.
	shrunk := session.NewSnapshot("show-1", 2, baseSeats()[:3], snapAt(1, nil).FetchedAt())
	evicted, ok := s.ApplySnapshot(shrunk)
	require.True(t, ok)
	require.Len(t, evicted, 1)
	assert.Equal(t, "B1", evicted[0].SeatID)
	assert.Equal(t, session.EvictedGone, evicted[0].Reason)
	assert.Equal(t, uint32(1800), evicted[0].PriceCents)
	assert.Empty(t, s.Selected())
}

func TestReconcileIsIdempotent(t *testing.T) {
	s := newTestSession(t, snapAt(1, nil), nil)
	require.NoError(t, s.Toggle("A1"))
	require.NoError(t, s.Toggle("A2"))

	taken := snapAt(2, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked
	})
	evicted, ok := s.ApplySnapshot(taken)
	require.True(t, ok)
	require.Len(t, evicted, 1)

	// Re-applying the identical snapshot is rejected by the version guard
	// and evicts nothing further.
	evicted, ok = s.ApplySnapshot(taken)
	assert.False(t, ok)
	assert.Empty(t, evicted)

	// A forced pass against the held snapshot also finds nothing left.
	assert.Empty(t, s.ForceReconcile())
	assert.Len(t, s.Selected(), 1)
}

func TestReconcileOrderIndependent(t *testing.T) {
	// The same snapshot applied to the same selection built in any order
	// must evict the same seats, in the same deterministic order.
	orders := [][]string{
		{"A1", "A2", "B1"},
		{"B1", "A1", "A2"},
		{"A2", "B1", "A1"},
	}
	taken := snapAt(2, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked // A1
		seats[3].Status = model.SeatHeld   // B1
	})

	var results [][]session.EvictedSeat
	for _, order := range orders {
		s := newTestSession(t, snapAt(1, nil), nil)
		for _, id := range order {
			require.NoError(t, s.Toggle(id))
		}
		evicted, ok := s.ApplySnapshot(taken)
		require.True(t, ok)
		results = append(results, evicted)
	}

	require.Len(t, results[0], 2)
	assert.Equal(t, "A1", results[0][0].SeatID)
	assert.Equal(t, session.EvictedBooked, results[0][0].Reason)
	assert.Equal(t, "B1", results[0][1].SeatID)
	assert.Equal(t, session.EvictedHeld, results[0][1].Reason)
	for _, evicted := range results[1:] {
		assert.Equal(t, results[0], evicted)
	}
}

func TestReconcileNotifiesObservers(t *testing.T) {
	s := newTestSession(t, snapAt(1, nil), nil)
	obs := &recordObserver{}
	s.Subscribe(obs)
	require.NoError(t, s.Toggle("A1"))
	require.NoError(t, s.Toggle("A2"))

	_, ok := s.ApplySnapshot(snapAt(2, func(seats []model.Seat) {
		seats[1].Status = model.SeatHeld
	}))
	require.True(t, ok)

	require.Len(t, obs.evictions, 1)
	require.Len(t, obs.evictions[0], 1)
	assert.Equal(t, "A2", obs.evictions[0][0].SeatID)
	// Eviction is followed by a selection update with the survivors.
	last := obs.selections[len(obs.selections)-1]
	require.Len(t, last, 1)
	assert.Equal(t, "A1", last[0].SeatID)
	assert.Equal(t, uint32(1200), obs.totals[len(obs.totals)-1])
}

func TestCleanSnapshotEvictsNothingAndStaysQuiet(t *testing.T) {
	s := newTestSession(t, snapAt(1, nil), nil)
	obs := &recordObserver{}
	s.Subscribe(obs)
	require.NoError(t, s.Toggle("A1"))

	evicted, ok := s.ApplySnapshot(snapAt(2, nil))
	require.True(t, ok)
	assert.Empty(t, evicted)
	// No eviction callback fires for an empty pass.
	assert.Empty(t, obs.evictions)
}
