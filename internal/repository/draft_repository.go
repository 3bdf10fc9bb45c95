package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
)

// DraftRepo provides CRUD operations for the drafts and draft_outcomes
// tables.  A draft row is written once at checkout and updated as the
// submission progresses; each terminal resolution additionally appends
// an outcome row, so retries that resolve differently (timeout first,
// confirmed on retry) stay visible for audit.  All timestamps are stored
// in UTC.
//
// Schema:
//
//	drafts(id CHAR(36) PK, session_id CHAR(36), user_id BIGINT UNSIGNED,
//	       showtime_id VARCHAR(64), seats JSON, total_cents INT UNSIGNED,
//	       idempotency_key CHAR(36), status VARCHAR(16),
//	       reason VARCHAR(32), created_at, updated_at)
//	draft_outcomes(id BIGINT AUTO_INCREMENT PK, draft_id CHAR(36),
//	       status VARCHAR(16), reason VARCHAR(32), booking_id VARCHAR(64),
//	       server_total_cents INT UNSIGNED, message TEXT, created_at)
type DraftRepo struct {
	db *sql.DB
}

// NewDraftRepo returns a new DraftRepo bound to the given database.
func NewDraftRepo(db *sql.DB) *DraftRepo { return &DraftRepo{db: db} }

// SaveDraft inserts a freshly checked-out draft.
func (r *DraftRepo) SaveDraft(ctx context.Context, d *session.Draft) error {
	seats, err := json.Marshal(d.Seats)
	if err != nil {
		return err
	}
	const q = `INSERT INTO drafts
	           (id, session_id, user_id, showtime_id, seats, total_cents, idempotency_key, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		d.ID, d.SessionID, d.UserID, d.ShowtimeID, seats, d.TotalCents, d.IdempotencyKey, string(d.Status))
	return err
}

// UpdateDraftStatus records a status transition for a draft.  reason is
// empty except for rejections.
func (r *DraftRepo) UpdateDraftStatus(ctx context.Context, draftID string, status session.DraftStatus, reason model.RejectReason) error {
	const q = `UPDATE drafts SET status = ?, reason = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, string(status), string(reason), draftID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// RecordOutcome stores a terminal resolution: the draft row is moved to
// its final status and an outcome row is appended, both inside one
// transaction.
func (r *DraftRepo) RecordOutcome(ctx context.Context, d *session.Draft, res model.BookingResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const up = `UPDATE drafts SET status = ?, reason = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, up, string(d.Status), string(d.Reason), d.ID); err != nil {
		return err
	}
	const ins = `INSERT INTO draft_outcomes
	             (draft_id, status, reason, booking_id, server_total_cents, message)
	             VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		d.ID, string(res.Status), string(res.Reason), res.BookingID, res.TotalCents, res.Message); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DraftDetail is a draft with its most recent outcome, as listed for the
// current user.
type DraftDetail struct {
	ID               string          `json:"id"`
	ShowtimeID       string          `json:"showtime_id"`
	Seats            json.RawMessage `json:"seats"`
	TotalCents       uint32          `json:"total_cents"`
	Status           string          `json:"status"`
	Reason           *string         `json:"reason,omitempty"`
	BookingID        *string         `json:"booking_id,omitempty"`
	ServerTotalCents *uint32         `json:"server_total_cents,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ListByUser returns the user's drafts, newest first, each joined with
// its latest outcome when one exists.  An empty slice is returned when
// the user has no drafts.
func (r *DraftRepo) ListByUser(ctx context.Context, userID uint64) ([]DraftDetail, error) {
	const q = `SELECT d.id, d.showtime_id, d.seats, d.total_cents, d.status, d.reason, d.created_at,
	                  o.booking_id, o.server_total_cents
	           FROM drafts d
	           LEFT JOIN draft_outcomes o ON o.draft_id = d.id
	             AND o.id = (SELECT MAX(id) FROM draft_outcomes WHERE draft_id = d.id)
	           WHERE d.user_id = ?
	           ORDER BY d.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]DraftDetail, 0)
	for rows.Next() {
		var det DraftDetail
		var reason sql.NullString
		var bookingID sql.NullString
		var serverTotal sql.NullInt64
		var seats []byte
		if err := rows.Scan(
			&det.ID, &det.ShowtimeID, &seats, &det.TotalCents, &det.Status, &reason, &det.CreatedAt,
			&bookingID, &serverTotal,
		); err != nil {
			return nil, err
		}
		det.Seats = json.RawMessage(seats)
		if reason.Valid && reason.String != "" {
			rs := reason.String
			det.Reason = &rs
		}
		if bookingID.Valid {
			b := bookingID.String
			det.BookingID = &b
		}
		if serverTotal.Valid {
			st := uint32(serverTotal.Int64)
			det.ServerTotalCents = &st
		}
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetByID loads one draft row for the given user.  Returns
// ErrDraftNotFound when no such draft exists for the user.
func (r *DraftRepo) GetByID(ctx context.Context, draftID string, userID uint64) (*DraftDetail, error) {
	const q = `SELECT d.id, d.showtime_id, d.seats, d.total_cents, d.status, d.reason, d.created_at
	           FROM drafts d
	           WHERE d.id = ? AND d.user_id = ?`
	var det DraftDetail
	var reason sql.NullString
	var seats []byte
	err := r.db.QueryRowContext(ctx, q, draftID, userID).Scan(
		&det.ID, &det.ShowtimeID, &seats, &det.TotalCents, &det.Status, &reason, &det.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	det.Seats = json.RawMessage(seats)
	if reason.Valid && reason.String != "" {
		rs := reason.String
		det.Reason = &rs
	}
	return &det, nil
}
