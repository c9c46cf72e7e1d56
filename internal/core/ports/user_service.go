package ports

import (
	"context"

	"github.com/limcoins/user-service/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	// InitialBalance is honoured only when an admin creates the account; zero
	// means the default starting grant.
	InitialBalance int64
}

// UpdateUserInput carries admin edits. Empty fields are left unchanged.
type UpdateUserInput struct {
	Username string
	Email    string
	Role     string
}

// UserService covers account management and the local-only ledger, inventory
// and roster operations.
type UserService interface {
	Register(ctx context.Context, caller domain.Caller, in RegisterInput) (*domain.User, error)
	GetUser(ctx context.Context, caller domain.Caller, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, caller domain.Caller) ([]*domain.User, error)
	TopByBalance(ctx context.Context, caller domain.Caller) ([]*domain.User, error)
	UpdateUser(ctx context.Context, caller domain.Caller, userID string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Caller, userID string) error

	// AddCoins and DeductCoins use a soft-failure contract: an insufficient
	// balance is reported as false with a nil error.
	AddCoins(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error)
	DeductCoins(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error)
	LedgerHistory(ctx context.Context, caller domain.Caller, userID string, limit int) ([]domain.LedgerEntry, error)

	AddItem(ctx context.Context, caller domain.Caller, userID string, itemID int64) error
	ListItems(ctx context.Context, caller domain.Caller, userID string) ([]int64, error)

	ListActiveBids(ctx context.Context, caller domain.Caller, userID string) ([]int64, error)
	ListCreatedAuctions(ctx context.Context, caller domain.Caller, userID string) ([]int64, error)
	AddActiveBid(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error
	AddCreatedAuction(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error
}

// PlaceBidInput carries a bid on a remote auction.
type PlaceBidInput struct {
	UserID    string
	AuctionID int64
	Amount    float64
}

// CreateAuctionInput carries a new listing for the remote auction service.
type CreateAuctionInput struct {
	UserID        string
	ItemID        int64
	StartingPrice float64
}

// AbandonBidResult reports the outcome of an abandon-bid. Found is false when
// the auction was not in the user's active bids; that is not an error.
type AbandonBidResult struct {
	AuctionID int64
	Found     bool
	Removed   bool
}

// LiquidationResult reports a sale of an item to the system.
type LiquidationResult struct {
	ItemID   int64
	Value    float64
	Credited int64
	Balance  int64
}

// ActiveBidDetail pairs an active bid with the auction service's current view.
// Error is set instead of Auction when the lookup failed.
type ActiveBidDetail struct {
	AuctionID int64
	Auction   *domain.AuctionView
	Error     string
}

// BidService implements the compound workflows that span the user store and
// the remote services.
type BidService interface {
	PlaceBid(ctx context.Context, caller domain.Caller, in PlaceBidInput) error
	AbandonBid(ctx context.Context, caller domain.Caller, userID string, auctionID int64) (*AbandonBidResult, error)
	CreateAuction(ctx context.Context, caller domain.Caller, in CreateAuctionInput) (int64, error)
	LiquidateItem(ctx context.Context, caller domain.Caller, userID string, itemID int64) (*LiquidationResult, error)
	ActiveBidDetails(ctx context.Context, caller domain.Caller, userID string) ([]ActiveBidDetail, error)
}
