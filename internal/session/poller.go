package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// notFoundReporter matches the upstream package's showtime-not-found
// sentinel without importing it here; the upstream package already
// imports session for the Snapshot type.
type notFoundReporter interface{ NotFound() bool }

// poll refreshes one session's inventory on the hub cadence until the
// stop channel closes.  Each fetch is tagged with a sequence number
// before it is issued, so a slow response that completes after a newer
// one is discarded by the snapshot version guard instead of rolling the
// session backwards.  Transient fetch errors keep the last-known
// snapshot; a definitive not-found stops polling, the showtime is gone
// and only re-navigation can help.
func (h *Hub) poll(sess *Session, stop <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PollInterval)
	defer ticker.Stop()
	log := h.log.With(zap.String("session_id", sess.ID()), zap.String("showtime_id", sess.ShowtimeID()))
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		seq := sess.NextFetchSeq()
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.FetchTimeout)
		snap, err := h.inventory.FetchInventory(ctx, sess.ShowtimeID())
		cancel()
		if err != nil {
			var nf notFoundReporter
			if errors.As(err, &nf) && nf.NotFound() {
				log.Warn("showtime gone, stopping inventory polling", zap.Error(err))
				return
			}
			log.Debug("inventory poll failed", zap.Error(err))
			continue
		}
		if snap.Version() == 0 {
			snap = snap.withVersion(seq)
		}
		if evicted, ok := sess.ApplySnapshot(snap); ok && len(evicted) > 0 {
			log.Info("poll evicted seats", zap.Int("evicted", len(evicted)))
		}
	}
}
