package domain

import (
	"fmt"
	"slices"
)

// IsActive reports whether the user currently bids on auctionID.
func (u *User) IsActive(auctionID int64) bool {
	return slices.Contains(u.ActiveBids, auctionID)
}

// Activate records auctionID as an active bid.
func (u *User) Activate(auctionID int64) error {
	if u.IsActive(auctionID) {
		return fmt.Errorf("auction %d: %w", auctionID, ErrAlreadyActive)
	}
	u.ActiveBids = append(u.ActiveBids, auctionID)
	return nil
}

// Deactivate removes auctionID from the active bids and reports whether it was there.
func (u *User) Deactivate(auctionID int64) bool {
	i := slices.Index(u.ActiveBids, auctionID)
	if i < 0 {
		return false
	}
	u.ActiveBids = slices.Delete(u.ActiveBids, i, i+1)
	return true
}

// IsListed reports whether the user created auctionID.
func (u *User) IsListed(auctionID int64) bool {
	return slices.Contains(u.CreatedAuctions, auctionID)
}

// RecordCreated records auctionID as listed by the user.
func (u *User) RecordCreated(auctionID int64) error {
	if u.IsListed(auctionID) {
		return fmt.Errorf("auction %d: %w", auctionID, ErrAlreadyListed)
	}
	u.CreatedAuctions = append(u.CreatedAuctions, auctionID)
	return nil
}
