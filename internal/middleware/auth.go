package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zorlakov/devconnect/internal/httperr"
	"github.com/zorlakov/devconnect/internal/token"
)

// UserIDKey is the context key the guard stores the authenticated user id under.
const UserIDKey = "user_id"

// AuthGuard rejects requests without a valid bearer credential and attaches
// the decoded user id to the request context.
func AuthGuard(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return httperr.Unauthorized(c, "no token, authorization denied")
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == header || tokenStr == "" {
				return httperr.Unauthorized(c, "no token, authorization denied")
			}

			userID, err := token.Parse(tokenStr, secret)
			if err != nil {
				return httperr.Unauthorized(c, "token is not valid")
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID reads the authenticated user id set by AuthGuard.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}
