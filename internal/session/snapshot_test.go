package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
)

func TestSnapshotCopiesInput(t *testing.T) {
	seats := baseSeats()
	snap := session.NewSnapshot("show-1", 1, seats, time.Now().UTC())

	// Mutating the caller's slice after construction must not leak in.
	seats[0].Status = model.SeatBooked
	seats[0].PriceCents = 1

	got, ok := snap.Seat("A1")
	require.True(t, ok)
	assert.Equal(t, model.SeatAvailable, got.Status)
	assert.Equal(t, uint32(1200), got.PriceCents)
}

func TestSnapshotSeatLookup(t *testing.T) {
	snap := session.NewSnapshot("show-1", 1, baseSeats(), time.Now().UTC())

	seat, ok := snap.Seat("B2")
	require.True(t, ok)
	assert.Equal(t, model.SeatHeld, seat.Status)

	_, ok = snap.Seat("Z9")
	assert.False(t, ok)
	assert.Equal(t, 5, snap.Len())
}

func TestSnapshotSeatsReturnsChartOrderCopy(t *testing.T) {
	snap := session.NewSnapshot("show-1", 1, baseSeats(), time.Now().UTC())

	out := snap.Seats()
	require.Len(t, out, 5)
	assert.Equal(t, "A1", out[0].ID)
	assert.Equal(t, "B2", out[4].ID)

	// The returned slice is a copy; writing to it changes nothing.
	out[0].Status = model.SeatBooked
	again, _ := snap.Seat("A1")
	assert.Equal(t, model.SeatAvailable, again.Status)
}
