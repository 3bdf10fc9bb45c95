package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/metrics"
	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
	"github.com/iliyamo/cinema-booking-session/internal/upstream"
)

// SessionHandler exposes the booking session lifecycle over HTTP.  All
// routes require authentication; the hub enforces that a session is only
// visible to its owner.
type SessionHandler struct {
	hub       *session.Hub
	metrics   *metrics.Metrics
	observers []session.Observer
	log       *zap.Logger
}

// NewSessionHandler constructs the handler.  observers are subscribed to
// every session the handler creates, in order.
func NewSessionHandler(hub *session.Hub, m *metrics.Metrics, log *zap.Logger, observers ...session.Observer) *SessionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{hub: hub, metrics: m, observers: observers, log: log}
}

// createSessionRequest is the body of POST /v1/sessions.
type createSessionRequest struct {
	ShowtimeID string `json:"showtime_id" validate:"required"`
}

// toggleRequest is the body of POST /v1/sessions/:id/toggle.
type toggleRequest struct {
	SeatID string `json:"seat_id" validate:"required"`
}

// sessionResponse is the full session state returned by Create, Get and
// the mutation endpoints.
type sessionResponse struct {
	ID         string               `json:"id"`
	ShowtimeID string               `json:"showtime_id"`
	Version    uint64               `json:"version"`
	Seats      []session.SeatView   `json:"seats"`
	Selection  []session.PinnedSeat `json:"selection"`
	TotalCents uint32               `json:"total_cents"`
	Draft      *session.Draft       `json:"draft,omitempty"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:         s.ID(),
		ShowtimeID: s.ShowtimeID(),
		Version:    s.SnapshotVersion(),
		Seats:      s.Seats(),
		Selection:  s.Selected(),
		TotalCents: s.TotalCents(),
		Draft:      s.Draft(),
	}
}

// Create handles POST /v1/sessions: fetches the showtime's inventory and
// opens a session for the caller.
func (h *SessionHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sess, err := h.hub.Create(c.Request().Context(), userID, req.ShowtimeID, h.observers...)
	if err != nil {
		var nf *upstream.NotFoundError
		if errors.As(err, &nf) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.log.Error("session create failed", zap.String("showtime_id", req.ShowtimeID), zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "inventory service unavailable"})
	}
	return c.JSON(http.StatusCreated, newSessionResponse(sess))
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Toggle handles POST /v1/sessions/:id/toggle: flips membership of one
// seat in the selection.
func (h *SessionHandler) Toggle(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := sess.Toggle(req.SeatID); err != nil {
		h.metrics.TogglesTotal.WithLabelValues("unavailable").Inc()
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable", "seat_id": req.SeatID})
	}
	h.metrics.TogglesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Clear handles POST /v1/sessions/:id/clear: empties the selection.
func (h *SessionHandler) Clear(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	sess.Clear()
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Refresh handles POST /v1/sessions/:id/refresh: fetches the inventory
// on demand and reconciles the selection against it.  The response lists
// the seats the pass evicted, possibly none.
func (h *SessionHandler) Refresh(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	evicted, err := h.hub.Refresh(c.Request().Context(), sess)
	if err != nil {
		var nf *upstream.NotFoundError
		if errors.As(err, &nf) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "inventory service unavailable"})
	}
	if evicted == nil {
		evicted = []session.EvictedSeat{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"evicted": evicted,
		"session": newSessionResponse(sess),
	})
}

// Checkout handles POST /v1/sessions/:id/checkout: finalizes the current
// selection into a draft with a fresh idempotency key, or returns the
// existing draft when it still pins exactly this selection.
func (h *SessionHandler) Checkout(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	draft, err := sess.Checkout(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptySelection):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "selection is empty"})
		case errors.Is(err, session.ErrAlreadyInFlight):
			return c.JSON(http.StatusConflict, echo.Map{"error": "submission already in flight"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}
	return c.JSON(http.StatusCreated, draft)
}

// Submit handles POST /v1/sessions/:id/submit: runs the current draft to
// a terminal state.  The response body is always the typed booking
// result; the status code mirrors its outcome.
func (h *SessionHandler) Submit(c echo.Context) error {
	sess, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	res, err := sess.Submit(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoDraft):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no open draft, checkout first"})
		case errors.Is(err, session.ErrAlreadyInFlight):
			return c.JSON(http.StatusConflict, echo.Map{"error": "submission already in flight"})
		case errors.Is(err, session.ErrDraftTerminal):
			return c.JSON(http.StatusConflict, echo.Map{"error": "draft already resolved, checkout again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
	}
	return c.JSON(submitStatusCode(res), res)
}

// Abandon handles DELETE /v1/sessions/:id.
func (h *SessionHandler) Abandon(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.hub.Abandon(c.Param("id"), userID); err != nil {
		return h.sessionError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// lookup resolves the :id path parameter to a session owned by the
// caller.
func (h *SessionHandler) lookup(c echo.Context) (*session.Session, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	return h.hub.Get(c.Param("id"), userID)
}

// sessionError maps hub and auth errors onto HTTP statuses.
func (h *SessionHandler) sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, session.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, session.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// submitStatusCode picks the HTTP status for a resolved submission.
func submitStatusCode(res model.BookingResult) int {
	switch res.Status {
	case model.BookingConfirmed, model.BookingPaymentPending:
		return http.StatusCreated
	}
	switch res.Reason {
	case model.ReasonSeatsNoLongerAvailable:
		return http.StatusConflict
	case model.ReasonValidationFailed:
		return http.StatusBadRequest
	case model.ReasonNetworkFailure:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
