package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soteria/accounts-system/internal/core/domain"
)

// errorEnvelope is the canonical error shape for all API errors. Location
// names the offending field on validation failures and is omitted otherwise.
type errorEnvelope struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders *domain.ValidationError as 422 with the field in "location".
//   - Passes echo's own errors (bind failures, router 404s) through.
//   - Logs anything else internally and returns a generic 500 — the
//     underlying error text never reaches the client.
//
// It is the only place a failed request is written, so a request cannot be
// answered twice with conflicting statuses.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, envelope := resolveError(err, log, c)
		_ = c.JSON(status, envelope)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorEnvelope) {
	// Caller-correctable rejections, duplicate usernames included.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorEnvelope{
			Code:     http.StatusUnprocessableEntity,
			Reason:   "ValidationError",
			Message:  ve.Message,
			Location: ve.Field,
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorEnvelope{
			Code:    he.Code,
			Reason:  http.StatusText(he.Code),
			Message: fmt.Sprintf("%v", he.Message),
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorEnvelope{
		Code:    http.StatusInternalServerError,
		Reason:  "InternalError",
		Message: "internal server error",
	}
}
