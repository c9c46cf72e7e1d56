package handler

import (
	"time"

	"github.com/limcoins/user-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Users ---

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
	Balance  int64  `json:"balance"  validate:"gte=0"`
}

type updateUserRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=32"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type coinsRequest struct {
	Amount *int64 `json:"amount" validate:"required,gte=0"`
}

type coinsResponse struct {
	UserID  string `json:"user_id"`
	Success bool   `json:"success"`
	Balance int64  `json:"balance"`
}

type itemsResponse struct {
	UserID string  `json:"user_id"`
	Items  []int64 `json:"items"`
}

type ledgerEntryResponse struct {
	Delta        int64     `json:"delta"`
	BalanceAfter int64     `json:"balance_after"`
	Reason       string    `json:"reason"`
	At           time.Time `json:"at"`
}

type ledgerResponse struct {
	UserID  string                `json:"user_id"`
	Entries []ledgerEntryResponse `json:"entries"`
}

// --- Bids & auctions ---

type placeBidRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type placeBidResponse struct {
	UserID    string  `json:"user_id"`
	AuctionID int64   `json:"auction_id"`
	Amount    float64 `json:"amount"`
}

type createAuctionRequest struct {
	ItemID        int64   `json:"item_id"        validate:"required,gt=0"`
	StartingPrice float64 `json:"starting_price" validate:"gte=0"`
}

type activeBidsResponse struct {
	UserID     string  `json:"user_id"`
	ActiveBids []int64 `json:"active_bids"`
}

type bidDetailResponse struct {
	AuctionID int64               `json:"auction_id"`
	Auction   *domain.AuctionView `json:"auction,omitempty"`
	Error     string              `json:"error,omitempty"`
}

type createdAuctionsResponse struct {
	UserID          string  `json:"user_id"`
	CreatedAuctions []int64 `json:"created_auctions"`
}

type createAuctionResponse struct {
	AuctionID int64 `json:"auction_id"`
}

type abandonBidResponse struct {
	AuctionID int64  `json:"auction_id"`
	Found     bool   `json:"found"`
	Removed   bool   `json:"removed"`
	Message   string `json:"message,omitempty"`
}

type liquidationResponse struct {
	ItemID   int64   `json:"item_id"`
	Value    float64 `json:"value"`
	Credited int64   `json:"credited"`
	Balance  int64   `json:"balance"`
}
