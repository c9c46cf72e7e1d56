package ports

import (
	"context"

	"github.com/limcoins/user-service/internal/core/domain"
)

// AuctionGateway is the call contract against the remote Auction service.
//
// Every method fails with domain.ErrRemoteUnavailable on network errors,
// timeouts and 5xx responses. Domain rejections are returned as
// *domain.RejectionError wrapping the matching sentinel.
type AuctionGateway interface {
	CreateAuction(ctx context.Context, sellerID string, itemID int64, startingPrice float64) (int64, error)
	PlaceBid(ctx context.Context, auctionID int64, bidderID string, amount float64) error
	// RetractBid fails with domain.ErrNoStandingBid when the bidder has no bid.
	RetractBid(ctx context.Context, auctionID int64, bidderID string) error
	// FetchAuction fails with domain.ErrAuctionNotFound for unknown ids.
	FetchAuction(ctx context.Context, auctionID int64) (*domain.AuctionView, error)
}
