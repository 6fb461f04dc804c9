package alerts

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zorlakov/devconnect/internal/httperr"
	"github.com/zorlakov/devconnect/internal/middleware"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns the caller's notifications, newest first.
// GET /api/notifications
func (h *Handler) List(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	items, err := h.repo.ListByUser(c.Request().Context(), actorID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

// MarkRead stamps one of the caller's notifications as read.
// POST /api/notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	actorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NotFound(c, "notification not found")
	}

	if err := h.repo.MarkRead(c.Request().Context(), actorID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return httperr.NotFound(c, "notification not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "notification read"})
}
