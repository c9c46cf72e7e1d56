package domain

// AuctionStatus is the lifecycle state reported by the auction service.
type AuctionStatus string

const (
	AuctionOpen   AuctionStatus = "open"
	AuctionClosed AuctionStatus = "closed"
)

// AuctionView is the read-only projection of a remote auction.
type AuctionView struct {
	ID              int64         `json:"id"`
	SellerID        string        `json:"seller_id"`
	ItemID          int64         `json:"item_id"`
	CurrentBid      float64       `json:"current_bid"`
	HighestBidderID string        `json:"highest_bidder_id,omitempty"`
	Status          AuctionStatus `json:"status"`
}

// AcceptsBids reports whether the auction is still taking bids. An empty status
// counts as open.
func (a AuctionView) AcceptsBids() bool {
	return a.Status == "" || a.Status == AuctionOpen
}
