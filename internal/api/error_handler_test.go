package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{"invalid input", fmt.Errorf("place bid: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"user not found", fmt.Errorf("load user x: %w", domain.ErrUserNotFound), http.StatusNotFound},
		{"auction not found", domain.ErrAuctionNotFound, http.StatusNotFound},
		{"item unknown", domain.ErrItemUnknown, http.StatusNotFound},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"already active", domain.ErrAlreadyActive, http.StatusConflict},
		{"no standing bid", domain.ErrNoStandingBid, http.StatusConflict},
		{"busy", domain.ErrUserBusy, http.StatusConflict},
		{"version conflict", domain.ErrVersionConflict, http.StatusConflict},
		{"funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"overflow", fmt.Errorf("credit 1: %w", domain.ErrBalanceOverflow), http.StatusUnprocessableEntity},
		{"not owned", domain.ErrNotOwned, http.StatusUnprocessableEntity},
		{"bid rejected", domain.Reject(domain.ErrBidRejected, "too low"), http.StatusUnprocessableEntity},
		{"invalid valuation", domain.ErrInvalidValuation, http.StatusBadGateway},
		{"unavailable", fmt.Errorf("auction place_bid: %w", domain.ErrRemoteUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("expected error envelope, got %q", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_RejectionKeepsReason(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(fmt.Errorf("place bid: %w", domain.Reject(domain.ErrBidRejected, "auction 7 is closed")), c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "bid rejected by auction service: auction 7 is closed" {
		t.Fatalf("unexpected message: %q", body.Error)
	}
}

func TestHTTPErrorHandler_InternalDetailsHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("mongo: connection reset by peer"), c)

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "internal server error" {
		t.Fatalf("internal error leaked: %q", body.Error)
	}
}
