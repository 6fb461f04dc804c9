// Package httperr holds the JSON error responses every handler speaks:
// {"error": msg} for single faults and {"errors": [...]} for validation.
package httperr

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// FieldError is one violated validation rule.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func Validation(c echo.Context, errs []FieldError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}

func Forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// Internal logs the underlying fault and returns a generic message. The
// detail never reaches the client.
func Internal(c echo.Context, err error) error {
	log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
}
