package stream

import (
	"github.com/labstack/echo/v4"

	"github.com/zorlakov/devconnect/internal/httperr"
	"github.com/zorlakov/devconnect/internal/token"
)

type Handler struct {
	hub    *Hub
	secret string
}

func NewHandler(hub *Hub, jwtSecret string) *Handler {
	return &Handler{hub: hub, secret: jwtSecret}
}

// Serve upgrades the connection and streams feed events until the client
// goes away. Browsers cannot set headers on websocket requests, so the
// token rides in the query string.
// GET /api/posts/stream?token=...
func (h *Handler) Serve(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return httperr.Unauthorized(c, "no token, authorization denied")
	}
	userID, err := token.Parse(raw, h.secret)
	if err != nil {
		return httperr.Unauthorized(c, "token is not valid")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.hub.register(ws)
	h.hub.Broadcast("presence_join", echo.Map{"user_id": userID})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.hub.unregister(ws)
			_ = ws.Close()
			h.hub.Broadcast("presence_leave", echo.Map{"user_id": userID})
			break
		}
	}
	return nil
}
