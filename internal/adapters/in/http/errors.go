package http

import (
	"errors"
	"net/http"

	"relocation/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var ErrActorRequired = errors.New("valid X-Actor-ID and X-Actor-Role headers are required")

// statusOf maps core errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errs.IsValidation(err), errors.Is(err, ErrActorRequired):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrLockTimeout),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrInvalidOffer):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidWindow),
		errors.Is(err, errs.ErrTooFarFromDestination):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	code := statusOf(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "Request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		message = http.StatusText(code)
	}

	if errors.Is(err, errs.ErrLockTimeout) {
		c.Response().Header().Set("Retry-After", "1")
	}

	return c.JSON(code, Error{Code: code, Message: message})
}
