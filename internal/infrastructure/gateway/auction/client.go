// Package auction is the HTTP client for the remote Auction service.
package auction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/infrastructure/gateway"
)

// Client implements ports.AuctionGateway.
type Client struct {
	http *gateway.Client
}

func New(cfg gateway.Config, log zerolog.Logger) (*Client, error) {
	c, err := gateway.NewClient("auction", cfg, log)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

type createAuctionRequest struct {
	SellerID      string  `json:"seller_id"`
	ItemID        int64   `json:"item_id"`
	StartingPrice float64 `json:"starting_price"`
}

type createAuctionResponse struct {
	ID int64 `json:"id"`
}

type placeBidRequest struct {
	BidderID string  `json:"bidder_id"`
	Amount   float64 `json:"amount"`
}

func (c *Client) CreateAuction(ctx context.Context, sellerID string, itemID int64, startingPrice float64) (int64, error) {
	var out createAuctionResponse
	err := c.http.Do(ctx, "create_auction", http.MethodPost, "/auctions", createAuctionRequest{
		SellerID:      sellerID,
		ItemID:        itemID,
		StartingPrice: startingPrice,
	}, &out)
	if se := asStatus(err); se != nil {
		return 0, domain.Reject(domain.ErrAuctionRejected, se.Message)
	}
	if err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, fmt.Errorf("auction create_auction: response without id: %w", domain.ErrRemoteUnavailable)
	}
	return out.ID, nil
}

func (c *Client) PlaceBid(ctx context.Context, auctionID int64, bidderID string, amount float64) error {
	path := fmt.Sprintf("/auctions/%d/bids", auctionID)
	err := c.http.Do(ctx, "place_bid", http.MethodPost, path, placeBidRequest{BidderID: bidderID, Amount: amount}, nil)
	if se := asStatus(err); se != nil {
		if se.Code == http.StatusNotFound {
			return fmt.Errorf("auction %d: %w", auctionID, domain.ErrAuctionNotFound)
		}
		return domain.Reject(domain.ErrBidRejected, se.Message)
	}
	return err
}

func (c *Client) RetractBid(ctx context.Context, auctionID int64, bidderID string) error {
	path := fmt.Sprintf("/auctions/%d/bids/%s", auctionID, url.PathEscape(bidderID))
	err := c.http.Do(ctx, "retract_bid", http.MethodDelete, path, nil, nil)
	if se := asStatus(err); se != nil {
		switch se.Code {
		case http.StatusNotFound, http.StatusConflict:
			return fmt.Errorf("auction %d: %w", auctionID, domain.ErrNoStandingBid)
		default:
			return domain.Reject(domain.ErrBidRejected, se.Message)
		}
	}
	return err
}

func (c *Client) FetchAuction(ctx context.Context, auctionID int64) (*domain.AuctionView, error) {
	var view domain.AuctionView
	err := c.http.Do(ctx, "fetch_auction", http.MethodGet, fmt.Sprintf("/auctions/%d", auctionID), nil, &view)
	if se := asStatus(err); se != nil {
		if se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("auction %d: %w", auctionID, domain.ErrAuctionNotFound)
		}
		return nil, fmt.Errorf("fetch auction %d: %w", auctionID, se)
	}
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		view.ID = auctionID
	}
	return &view, nil
}

func asStatus(err error) *gateway.StatusError {
	var se *gateway.StatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
