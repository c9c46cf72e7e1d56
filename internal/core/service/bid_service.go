package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/limcoins/user-service/internal/api/metrics"
	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

const maxConcurrentLookups = 8

// BidService runs the workflows that span the user store and the remote
// auction and valuation services.
//
// Every workflow calls the remote service first and mutates the user only
// after the remote call succeeded. A failure between the two leaves the
// remote side ahead of the local roster, never the other way round.
type BidService struct {
	c          committer
	auctions   ports.AuctionGateway
	valuations ports.ValuationGateway
	log        zerolog.Logger
}

func NewBidService(
	repo ports.UserRepository,
	locker ports.UserLocker,
	journal ports.LedgerJournal,
	auctions ports.AuctionGateway,
	valuations ports.ValuationGateway,
	log zerolog.Logger,
) *BidService {
	return &BidService{
		c:          newCommitter(repo, locker, journal, log),
		auctions:   auctions,
		valuations: valuations,
		log:        log,
	}
}

// PlaceBid places a bid on the auction service and records the auction in the
// user's active bids. Re-bidding on an auction that is already active is
// allowed.
func (s *BidService) PlaceBid(ctx context.Context, caller domain.Caller, in ports.PlaceBidInput) (err error) {
	defer func() { metrics.WorkflowsTotal.WithLabelValues("place_bid", outcome(err)).Inc() }()

	if err := authorize(caller, in.UserID); err != nil {
		return err
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return fmt.Errorf("place bid: amount must be positive: %w", domain.ErrInvalidInput)
	}

	unlock, err := s.c.lock(ctx, in.UserID)
	if err != nil {
		return err
	}
	defer unlock()

	u, err := s.c.load(ctx, in.UserID)
	if err != nil {
		return err
	}
	// A bid may not exceed the current balance. Nothing is held or debited.
	if in.Amount > float64(u.Balance) {
		return fmt.Errorf("place bid on auction %d: %w", in.AuctionID, domain.ErrInsufficientFunds)
	}

	view, err := s.auctions.FetchAuction(ctx, in.AuctionID)
	if err != nil {
		return fmt.Errorf("place bid on auction %d: %w", in.AuctionID, err)
	}
	if !view.AcceptsBids() {
		return domain.Reject(domain.ErrBidRejected, fmt.Sprintf("auction %d is %s", in.AuctionID, view.Status))
	}

	if err := s.auctions.PlaceBid(ctx, in.AuctionID, in.UserID, in.Amount); err != nil {
		return fmt.Errorf("place bid on auction %d: %w", in.AuctionID, err)
	}

	cctx, cancel := s.c.detach(ctx)
	defer cancel()

	if _, err := s.c.commit(cctx, "place_bid", u, func(u *domain.User) error {
		if err := u.Activate(in.AuctionID); err != nil && !errors.Is(err, domain.ErrAlreadyActive) {
			return err
		}
		return nil
	}); err != nil {
		s.driftError(err, in.UserID, in.AuctionID, "bid placed remotely but not recorded locally")
		return err
	}

	s.log.Info().
		Str("user_id", in.UserID).
		Int64("auction_id", in.AuctionID).
		Float64("amount", in.Amount).
		Msg("bid placed")
	return nil
}

// AbandonBid retracts the user's bid from the auction service and removes the
// auction from the active bids. An auction that is not active is reported as
// not found without calling the auction service.
func (s *BidService) AbandonBid(ctx context.Context, caller domain.Caller, userID string, auctionID int64) (res *ports.AbandonBidResult, err error) {
	defer func() { metrics.WorkflowsTotal.WithLabelValues("abandon_bid", outcome(err)).Inc() }()

	if err := authorize(caller, userID); err != nil {
		return nil, err
	}

	unlock, err := s.c.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, err := s.c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive(auctionID) {
		return &ports.AbandonBidResult{AuctionID: auctionID}, nil
	}

	if err := s.auctions.RetractBid(ctx, auctionID, userID); err != nil {
		return nil, fmt.Errorf("abandon bid on auction %d: %w", auctionID, err)
	}

	cctx, cancel := s.c.detach(ctx)
	defer cancel()

	var removed bool
	if _, err := s.c.commit(cctx, "abandon_bid", u, func(u *domain.User) error {
		removed = u.Deactivate(auctionID)
		return nil
	}); err != nil {
		s.driftError(err, userID, auctionID, "bid retracted remotely but still active locally")
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Int64("auction_id", auctionID).Msg("bid abandoned")
	return &ports.AbandonBidResult{AuctionID: auctionID, Found: true, Removed: removed}, nil
}

// CreateAuction lists an item on the auction service and records the new
// auction as created by the user.
func (s *BidService) CreateAuction(ctx context.Context, caller domain.Caller, in ports.CreateAuctionInput) (auctionID int64, err error) {
	defer func() { metrics.WorkflowsTotal.WithLabelValues("create_auction", outcome(err)).Inc() }()

	if err := authorize(caller, in.UserID); err != nil {
		return 0, err
	}
	if math.IsNaN(in.StartingPrice) || math.IsInf(in.StartingPrice, 0) || in.StartingPrice < 0 {
		return 0, fmt.Errorf("create auction: starting price must not be negative: %w", domain.ErrInvalidInput)
	}

	unlock, err := s.c.lock(ctx, in.UserID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	u, err := s.c.load(ctx, in.UserID)
	if err != nil {
		return 0, err
	}

	auctionID, err = s.auctions.CreateAuction(ctx, in.UserID, in.ItemID, in.StartingPrice)
	if err != nil {
		return 0, fmt.Errorf("create auction for item %d: %w", in.ItemID, err)
	}

	cctx, cancel := s.c.detach(ctx)
	defer cancel()

	if _, err := s.c.commit(cctx, "create_auction", u, func(u *domain.User) error {
		return u.RecordCreated(auctionID)
	}); err != nil {
		s.driftError(err, in.UserID, auctionID, "auction created remotely but not recorded locally")
		return 0, err
	}

	s.log.Info().
		Str("user_id", in.UserID).
		Int64("auction_id", auctionID).
		Int64("item_id", in.ItemID).
		Msg("auction created")
	return auctionID, nil
}

// LiquidateItem sells an owned item to the system at its current market value,
// floored to whole LimCoins.
func (s *BidService) LiquidateItem(ctx context.Context, caller domain.Caller, userID string, itemID int64) (res *ports.LiquidationResult, err error) {
	defer func() { metrics.WorkflowsTotal.WithLabelValues("liquidate_item", outcome(err)).Inc() }()

	if err := authorize(caller, userID); err != nil {
		return nil, err
	}

	unlock, err := s.c.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, err := s.c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Owns(itemID) {
		return nil, fmt.Errorf("liquidate item %d: %w", itemID, domain.ErrNotOwned)
	}

	value, err := s.valuations.FetchValue(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("liquidate item %d: %w", itemID, err)
	}
	coins, err := domain.CoinsFromValue(value)
	if err != nil {
		return nil, fmt.Errorf("liquidate item %d: %w", itemID, err)
	}

	// The valuation read has no side effect, so the commit stays on the
	// caller's context.
	updated, err := s.c.commit(ctx, "liquidate_item", u, func(u *domain.User) error {
		if err := u.RemoveItem(itemID); err != nil {
			return err
		}
		return u.Credit(coins)
	})
	if err != nil {
		return nil, err
	}

	metrics.CoinsMovedTotal.WithLabelValues("credit", "liquidate").Add(float64(coins))
	s.c.journalEntry(ctx, updated, coins, domain.LiquidationReason(itemID))
	s.log.Info().
		Str("user_id", userID).
		Int64("item_id", itemID).
		Float64("value", value).
		Int64("credited", coins).
		Msg("item liquidated")

	return &ports.LiquidationResult{
		ItemID:   itemID,
		Value:    value,
		Credited: coins,
		Balance:  updated.Balance,
	}, nil
}

// ActiveBidDetails pairs each active bid with the auction service's current
// view. Lookups run concurrently and a failed lookup is reported per entry.
func (s *BidService) ActiveBidDetails(ctx context.Context, caller domain.Caller, userID string) ([]ports.ActiveBidDetail, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}
	u, err := s.c.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]ports.ActiveBidDetail, len(u.ActiveBids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, id := range u.ActiveBids {
		i, id := i, id
		g.Go(func() error {
			details[i].AuctionID = id
			view, err := s.auctions.FetchAuction(gctx, id)
			if err != nil {
				details[i].Error = err.Error()
				return nil
			}
			details[i].Auction = view
			return nil
		})
	}
	_ = g.Wait()
	return details, nil
}

func (s *BidService) driftError(err error, userID string, auctionID int64, msg string) {
	s.log.Error().
		Err(err).
		Str("user_id", userID).
		Int64("auction_id", auctionID).
		Msg(msg)
}
