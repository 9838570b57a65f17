// Package httperr maps engine error kinds onto HTTP responses so every
// controller speaks the same error shape.
package httperr

import (
	"log/slog"
	"net/http"

	"circulation/util/apperr"

	"github.com/labstack/echo/v4"
)

func status(k apperr.Kind) int {
	switch k {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Capacity, apperr.State, apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes the error response; unknown errors are logged and hidden
// behind a generic 500 message.
func JSON(c echo.Context, log *slog.Logger, err error) error {
	k := apperr.KindOf(err)
	if k == "" {
		log.Error("internal error", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "INTERNAL",
			"message": "internal error",
		})
	}
	return c.JSON(status(k), echo.Map{"error": string(k), "message": err.Error()})
}
