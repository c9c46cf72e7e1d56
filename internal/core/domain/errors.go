package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("access forbidden")

	ErrInsufficientFunds = errors.New("insufficient limcoins")
	ErrBalanceOverflow   = errors.New("balance would overflow")
	ErrNotOwned          = errors.New("item not owned by user")
	ErrAlreadyActive     = errors.New("auction already in active bids")
	ErrAlreadyListed     = errors.New("auction already in created auctions")

	ErrBidRejected       = errors.New("bid rejected by auction service")
	ErrAuctionRejected   = errors.New("auction rejected by auction service")
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrNoStandingBid     = errors.New("no standing bid on auction")
	ErrItemUnknown       = errors.New("item unknown to valuation service")
	ErrInvalidValuation  = errors.New("invalid item valuation")
	ErrRemoteUnavailable = errors.New("remote service unavailable")

	// ErrVersionConflict is returned by the store when the persisted version no
	// longer matches the one the caller loaded.
	ErrVersionConflict = errors.New("user version conflict")
	ErrUserBusy        = errors.New("user is locked by another operation")
)

// RejectionError carries a domain rejection reported by a remote service.
// Kind is one of the sentinel errors above so callers can match with errors.Is.
type RejectionError struct {
	Kind   error
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.Kind }

// Reject builds a RejectionError for kind with the remote's reason.
func Reject(kind error, reason string) error {
	return &RejectionError{Kind: kind, Reason: reason}
}
