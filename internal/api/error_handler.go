package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Remote rejections carry the remote service's reason verbatim.
	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		return http.StatusUnprocessableEntity, rej.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, domain.ErrItemUnknown):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrAlreadyActive),
		errors.Is(err, domain.ErrAlreadyListed),
		errors.Is(err, domain.ErrNoStandingBid):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, domain.ErrUserBusy):
		return http.StatusConflict, "user is being modified by another request, retry"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient limcoins"
	case errors.Is(err, domain.ErrBalanceOverflow):
		return http.StatusUnprocessableEntity, "balance would overflow"
	case errors.Is(err, domain.ErrNotOwned):
		return http.StatusUnprocessableEntity, "item not owned by user"
	case errors.Is(err, domain.ErrBidRejected), errors.Is(err, domain.ErrAuctionRejected):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidValuation):
		log.Warn().Err(err).Str("path", c.Path()).Msg("valuation service returned an unusable value")
		return http.StatusBadGateway, "valuation service returned an invalid value"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("remote service unavailable")
		return http.StatusServiceUnavailable, "remote service unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
