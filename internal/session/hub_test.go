package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
	"github.com/iliyamo/cinema-booking-session/internal/upstream"
)

// fakeInventory serves scripted snapshots per showtime.
type fakeInventory struct {
	mu    sync.Mutex
	snaps map[string]*session.Snapshot
	err   error
	calls int
}

func newFakeInventory(snaps ...*session.Snapshot) *fakeInventory {
	f := &fakeInventory{snaps: make(map[string]*session.Snapshot)}
	for _, s := range snaps {
		f.snaps[s.ShowtimeID()] = s
	}
	return f
}

func (f *fakeInventory) set(snap *session.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[snap.ShowtimeID()] = snap
}

func (f *fakeInventory) FetchInventory(_ context.Context, showtimeID string) (*session.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.snaps[showtimeID]
	if !ok {
		return nil, &upstream.NotFoundError{Resource: "showtime", ID: showtimeID}
	}
	return snap, nil
}

func newTestHub(t *testing.T, inv *fakeInventory) *session.Hub {
	t.Helper()
	return session.NewHub(inv, newFakeBooking(confirmWith("bk-1")), session.NopDraftStore{}, session.HubConfig{
		SessionTTL:   time.Minute,
		FetchTimeout: time.Second,
	}, nil)
}

func TestHubCreateFetchesInitialSnapshot(t *testing.T) {
	hub := newTestHub(t, newFakeInventory(snapAt(7, nil)))

	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sess.OwnerID())
	assert.Equal(t, "show-1", sess.ShowtimeID())
	assert.Equal(t, uint64(7), sess.SnapshotVersion())
	assert.Len(t, sess.Seats(), 5)
	assert.Equal(t, 1, hub.Len())
}

func TestHubCreateUnknownShowtime(t *testing.T) {
	hub := newTestHub(t, newFakeInventory())

	_, err := hub.Create(context.Background(), 42, "show-404")
	var nf *upstream.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 0, hub.Len())
}

func TestHubCreateSeedsVersionlessSnapshot(t *testing.T) {
	versionless := session.NewSnapshot("show-1", 0, baseSeats(), time.Now().UTC())
	hub := newTestHub(t, newFakeInventory(versionless))

	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)
	// A backend without versions still gets a monotonic local sequence.
	assert.Equal(t, uint64(1), sess.SnapshotVersion())
}

func TestHubGetEnforcesOwnership(t *testing.T) {
	hub := newTestHub(t, newFakeInventory(snapAt(1, nil)))
	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)

	got, err := hub.Get(sess.ID(), 42)
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), got.ID())

	_, err = hub.Get(sess.ID(), 99)
	assert.ErrorIs(t, err, session.ErrNotOwner)

	_, err = hub.Get("no-such-session", 42)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestHubRefreshAppliesNewerSnapshot(t *testing.T) {
	inv := newFakeInventory(snapAt(1, nil))
	hub := newTestHub(t, inv)
	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)
	require.NoError(t, sess.Toggle("A1"))

	inv.set(snapAt(2, func(seats []model.Seat) {
		seats[0].Status = model.SeatHeld
	}))
	evicted, err := hub.Refresh(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "A1", evicted[0].SeatID)
	assert.Equal(t, uint64(2), sess.SnapshotVersion())
}

func TestHubRefreshDiscardsStaleReply(t *testing.T) {
	inv := newFakeInventory(snapAt(5, nil))
	hub := newTestHub(t, inv)
	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)
	require.NoError(t, sess.Toggle("A1"))

	// The backend replays an old version; nothing moves.
	inv.set(snapAt(3, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked
	}))
	evicted, err := hub.Refresh(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Equal(t, uint64(5), sess.SnapshotVersion())
	assert.Len(t, sess.Selected(), 1)
}

func TestHubRefreshVersionlessUsesFetchSequence(t *testing.T) {
	versionless := session.NewSnapshot("show-1", 0, baseSeats(), time.Now().UTC())
	inv := newFakeInventory(versionless)
	hub := newTestHub(t, inv)
	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)

	taken := session.NewSnapshot("show-1", 0, func() []model.Seat {
		seats := baseSeats()
		seats[0].Status = model.SeatBooked
		return seats
	}(), time.Now().UTC())
	inv.set(taken)

	require.NoError(t, sess.Toggle("A2"))
	evicted, err := hub.Refresh(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, evicted)
	// Each refresh advances the local sequence past the create seed.
	assert.Greater(t, sess.SnapshotVersion(), uint64(1))
}

func TestHubRouteDeliversToMatchingSessions(t *testing.T) {
	inv := newFakeInventory(snapAt(1, nil),
		session.NewSnapshot("show-2", 1, baseSeats(), time.Now().UTC()))
	hub := newTestHub(t, inv)

	s1, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)
	s2, err := hub.Create(context.Background(), 43, "show-1")
	require.NoError(t, err)
	other, err := hub.Create(context.Background(), 44, "show-2")
	require.NoError(t, err)
	require.NoError(t, s1.Toggle("A1"))
	require.NoError(t, s2.Toggle("A1"))
	require.NoError(t, other.Toggle("A1"))

	adopted := hub.Route(snapAt(2, func(seats []model.Seat) {
		seats[0].Status = model.SeatBooked
	}))
	assert.Equal(t, 2, adopted)
	assert.Empty(t, s1.Selected())
	assert.Empty(t, s2.Selected())
	// The session on the other showtime is untouched.
	assert.Len(t, other.Selected(), 1)
	assert.Equal(t, uint64(1), other.SnapshotVersion())
}

func TestHubRouteIsIdempotent(t *testing.T) {
	hub := newTestHub(t, newFakeInventory(snapAt(1, nil)))
	_, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)

	snap := snapAt(2, nil)
	assert.Equal(t, 1, hub.Route(snap))
	// The duplicate delivery is discarded by every session.
	assert.Equal(t, 0, hub.Route(snap))
}

func TestHubAbandonRemovesSession(t *testing.T) {
	hub := newTestHub(t, newFakeInventory(snapAt(1, nil)))
	sess, err := hub.Create(context.Background(), 42, "show-1")
	require.NoError(t, err)

	assert.ErrorIs(t, hub.Abandon(sess.ID(), 99), session.ErrNotOwner)
	require.NoError(t, hub.Abandon(sess.ID(), 42))
	assert.Equal(t, 0, hub.Len())
	_, err = hub.Get(sess.ID(), 42)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, hub.Abandon(sess.ID(), 42), session.ErrSessionNotFound)
}

func TestHubCreateObserversSeeFirstEvents(t *testing.T) {
	inv := newFakeInventory(snapAt(1, nil))
	hub := newTestHub(t, inv)
	obs := &recordObserver{}

	sess, err := hub.Create(context.Background(), 42, "show-1", obs)
	require.NoError(t, err)
	require.NoError(t, sess.Toggle("A1"))
	require.Len(t, obs.selections, 1)
}

func TestHubCreateTransientError(t *testing.T) {
	inv := newFakeInventory(snapAt(1, nil))
	inv.err = errors.New("connection refused")
	hub := newTestHub(t, inv)

	_, err := hub.Create(context.Background(), 42, "show-1")
	require.Error(t, err)
	var nf *upstream.NotFoundError
	assert.False(t, errors.As(err, &nf))
}
