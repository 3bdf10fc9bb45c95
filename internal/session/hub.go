package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HubConfig carries the knobs for the session hub.  Zero values fall
// back to the defaults below.
type HubConfig struct {
	// SessionTTL is how long an untouched session survives before the
	// sweep loop removes it.
	SessionTTL time.Duration
	// PollInterval is the cadence of the per-session inventory refresh.
	// Zero disables polling (push-only operation).
	PollInterval time.Duration
	// FetchTimeout bounds every inventory fetch.
	FetchTimeout time.Duration
}

const (
	defaultSessionTTL   = 30 * time.Minute
	defaultFetchTimeout = 5 * time.Second
)

// Hub owns all live sessions of this process.  It creates them with an
// initial inventory fetch, looks them up with ownership enforcement,
// feeds them snapshots from the poller and from the push channel, and
// sweeps the ones nobody touched within the TTL.
type Hub struct {
	inventory InventoryAPI
	booking   BookingAPI
	store     DraftStore
	cfg       HubConfig
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*hubEntry
	closed   bool
}

type hubEntry struct {
	sess     *Session
	stopPoll chan struct{}
}

// NewHub constructs a hub.  inventory and booking may not be nil; pass
// NopDraftStore when draft persistence is disabled.
func NewHub(inventory InventoryAPI, booking BookingAPI, store DraftStore, cfg HubConfig, log *zap.Logger) *Hub {
	if inventory == nil || booking == nil || store == nil {
		panic("nil dependency passed to session.NewHub")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		inventory: inventory,
		booking:   booking,
		store:     store,
		cfg:       cfg,
		log:       log,
		sessions:  make(map[string]*hubEntry),
	}
}

// Create fetches the initial inventory for the showtime and registers a
// new session for the given user.  Observers are subscribed before the
// session becomes reachable, so no event can be missed.  The error is
// whatever the inventory API returned (upstream.NotFoundError for an
// unknown showtime, a transport error otherwise).
func (h *Hub) Create(ctx context.Context, ownerID uint64, showtimeID string, observers ...Observer) (*Session, error) {
	fctx, cancel := context.WithTimeout(ctx, h.cfg.FetchTimeout)
	defer cancel()
	snap, err := h.inventory.FetchInventory(fctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if snap.Version() == 0 {
		// Version-less backend; seed the local sequence.
		snap = snap.withVersion(1)
	}

	id := uuid.NewString()
	sess := New(id, ownerID, snap, h.booking, h.store, h.log)
	for _, o := range observers {
		sess.Subscribe(o)
	}

	entry := &hubEntry{sess: sess, stopPoll: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	h.sessions[id] = entry
	h.mu.Unlock()

	if h.cfg.PollInterval > 0 {
		go h.poll(sess, entry.stopPoll)
	}
	h.log.Info("session created",
		zap.String("session_id", id),
		zap.Uint64("user_id", ownerID),
		zap.String("showtime_id", showtimeID),
		zap.Int("seats", snap.Len()))
	return sess, nil
}

// Get returns the session with the given id after checking that it
// belongs to ownerID.  It refreshes the session's TTL.
func (h *Hub) Get(id string, ownerID uint64) (*Session, error) {
	h.mu.Lock()
	entry, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if entry.sess.OwnerID() != ownerID {
		return nil, ErrNotOwner
	}
	entry.sess.Touch()
	return entry.sess, nil
}

// Refresh performs an on-demand inventory fetch for the session and
// reconciles it, returning the seats evicted by the new snapshot.  A
// stale reply (version not above the current one) evicts nothing and is
// not an error.
func (h *Hub) Refresh(ctx context.Context, sess *Session) ([]EvictedSeat, error) {
	seq := sess.NextFetchSeq()
	fctx, cancel := context.WithTimeout(ctx, h.cfg.FetchTimeout)
	defer cancel()
	snap, err := h.inventory.FetchInventory(fctx, sess.ShowtimeID())
	if err != nil {
		return nil, err
	}
	if snap.Version() == 0 {
		snap = snap.withVersion(seq)
	}
	evicted, _ := sess.ApplySnapshot(snap)
	return evicted, nil
}

// Abandon removes the session and stops its poller.  An in-flight
// submission is deliberately not cancelled: it runs to a terminal state
// on its own goroutine, and the persisted draft keeps the idempotency
// key valid for a later retry.
func (h *Hub) Abandon(id string, ownerID uint64) error {
	h.mu.Lock()
	entry, ok := h.sessions[id]
	if ok && entry.sess.OwnerID() != ownerID {
		h.mu.Unlock()
		return ErrNotOwner
	}
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	close(entry.stopPoll)
	h.log.Info("session abandoned", zap.String("session_id", id))
	return nil
}

// Route delivers a pushed snapshot to every live session for its
// showtime.  This is the entry point for the message-queue push channel;
// the reconciliation protocol itself does not care whether a snapshot
// arrived by polling or push.  Returns the number of sessions that
// adopted the snapshot.
func (h *Hub) Route(snap *Snapshot) int {
	h.mu.Lock()
	targets := make([]*Session, 0, 4)
	for _, e := range h.sessions {
		if e.sess.ShowtimeID() == snap.ShowtimeID() {
			targets = append(targets, e.sess)
		}
	}
	h.mu.Unlock()

	adopted := 0
	for _, sess := range targets {
		if _, ok := sess.ApplySnapshot(snap); ok {
			adopted++
		}
	}
	return adopted
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// StartSweeper runs the TTL sweep until ctx is done.  Expired sessions
// are abandoned exactly as if the user navigated away.
func (h *Hub) StartSweeper(ctx context.Context) {
	interval := h.cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

func (h *Hub) sweep() {
	cutoff := time.Now().UTC().Add(-h.cfg.SessionTTL)
	h.mu.Lock()
	var expired []*hubEntry
	for id, e := range h.sessions {
		if e.sess.LastSeen().Before(cutoff) {
			delete(h.sessions, id)
			expired = append(expired, e)
		}
	}
	h.mu.Unlock()
	for _, e := range expired {
		close(e.stopPoll)
		h.log.Info("session expired", zap.String("session_id", e.sess.ID()))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	h.closed = true
	entries := make([]*hubEntry, 0, len(h.sessions))
	for id, e := range h.sessions {
		delete(h.sessions, id)
		entries = append(entries, e)
	}
	h.mu.Unlock()
	for _, e := range entries {
		close(e.stopPoll)
	}
}
