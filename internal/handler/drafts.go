package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/repository"
)

// DraftHandler lists the caller's persisted booking drafts.  It is only
// mounted when the database is configured.
type DraftHandler struct {
	repo *repository.DraftRepo
	log  *zap.Logger
}

// NewDraftHandler constructs the handler.
func NewDraftHandler(repo *repository.DraftRepo, log *zap.Logger) *DraftHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftHandler{repo: repo, log: log}
}

// List handles GET /v1/my-drafts: the caller's drafts newest first, each
// with its latest outcome.
func (h *DraftHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	drafts, err := h.repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		h.log.Error("list drafts failed", zap.Uint64("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list drafts"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": drafts})
}
