package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/limcoins/user-service/internal/api/middleware"
	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

// stubUserService panics on any method whose fn is not set, so a test fails
// loudly when a handler calls something unexpected.
type stubUserService struct {
	registerFn      func(ctx context.Context, caller domain.Caller, in ports.RegisterInput) (*domain.User, error)
	getFn           func(ctx context.Context, caller domain.Caller, userID string) (*domain.User, error)
	listFn          func(ctx context.Context, caller domain.Caller) ([]*domain.User, error)
	topFn           func(ctx context.Context, caller domain.Caller) ([]*domain.User, error)
	updateFn        func(ctx context.Context, caller domain.Caller, userID string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, caller domain.Caller, userID string) error
	addCoinsFn      func(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error)
	deductCoinsFn   func(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error)
	ledgerFn        func(ctx context.Context, caller domain.Caller, userID string, limit int) ([]domain.LedgerEntry, error)
	addItemFn       func(ctx context.Context, caller domain.Caller, userID string, itemID int64) error
	listItemsFn     func(ctx context.Context, caller domain.Caller, userID string) ([]int64, error)
	listBidsFn      func(ctx context.Context, caller domain.Caller, userID string) ([]int64, error)
	listAuctionsFn  func(ctx context.Context, caller domain.Caller, userID string) ([]int64, error)
	addActiveBidFn  func(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error
	addCreatedAucFn func(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error
}

func (s *stubUserService) Register(ctx context.Context, caller domain.Caller, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, caller, in)
}

func (s *stubUserService) GetUser(ctx context.Context, caller domain.Caller, userID string) (*domain.User, error) {
	return s.getFn(ctx, caller, userID)
}

func (s *stubUserService) ListUsers(ctx context.Context, caller domain.Caller) ([]*domain.User, error) {
	return s.listFn(ctx, caller)
}

func (s *stubUserService) TopByBalance(ctx context.Context, caller domain.Caller) ([]*domain.User, error) {
	return s.topFn(ctx, caller)
}

func (s *stubUserService) UpdateUser(ctx context.Context, caller domain.Caller, userID string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, caller, userID, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, caller domain.Caller, userID string) error {
	return s.deleteFn(ctx, caller, userID)
}

func (s *stubUserService) AddCoins(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error) {
	return s.addCoinsFn(ctx, caller, userID, amount)
}

func (s *stubUserService) DeductCoins(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error) {
	return s.deductCoinsFn(ctx, caller, userID, amount)
}

func (s *stubUserService) LedgerHistory(ctx context.Context, caller domain.Caller, userID string, limit int) ([]domain.LedgerEntry, error) {
	return s.ledgerFn(ctx, caller, userID, limit)
}

func (s *stubUserService) AddItem(ctx context.Context, caller domain.Caller, userID string, itemID int64) error {
	return s.addItemFn(ctx, caller, userID, itemID)
}

func (s *stubUserService) ListItems(ctx context.Context, caller domain.Caller, userID string) ([]int64, error) {
	return s.listItemsFn(ctx, caller, userID)
}

func (s *stubUserService) ListActiveBids(ctx context.Context, caller domain.Caller, userID string) ([]int64, error) {
	return s.listBidsFn(ctx, caller, userID)
}

func (s *stubUserService) ListCreatedAuctions(ctx context.Context, caller domain.Caller, userID string) ([]int64, error) {
	return s.listAuctionsFn(ctx, caller, userID)
}

func (s *stubUserService) AddActiveBid(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error {
	return s.addActiveBidFn(ctx, caller, userID, auctionID)
}

func (s *stubUserService) AddCreatedAuction(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error {
	return s.addCreatedAucFn(ctx, caller, userID, auctionID)
}

type stubBidService struct {
	placeFn   func(ctx context.Context, caller domain.Caller, in ports.PlaceBidInput) error
	abandonFn func(ctx context.Context, caller domain.Caller, userID string, auctionID int64) (*ports.AbandonBidResult, error)
	createFn  func(ctx context.Context, caller domain.Caller, in ports.CreateAuctionInput) (int64, error)
	sellFn    func(ctx context.Context, caller domain.Caller, userID string, itemID int64) (*ports.LiquidationResult, error)
	detailsFn func(ctx context.Context, caller domain.Caller, userID string) ([]ports.ActiveBidDetail, error)
}

func (s *stubBidService) PlaceBid(ctx context.Context, caller domain.Caller, in ports.PlaceBidInput) error {
	return s.placeFn(ctx, caller, in)
}

func (s *stubBidService) AbandonBid(ctx context.Context, caller domain.Caller, userID string, auctionID int64) (*ports.AbandonBidResult, error) {
	return s.abandonFn(ctx, caller, userID, auctionID)
}

func (s *stubBidService) CreateAuction(ctx context.Context, caller domain.Caller, in ports.CreateAuctionInput) (int64, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubBidService) LiquidateItem(ctx context.Context, caller domain.Caller, userID string, itemID int64) (*ports.LiquidationResult, error) {
	return s.sellFn(ctx, caller, userID, itemID)
}

func (s *stubBidService) ActiveBidDetails(ctx context.Context, caller domain.Caller, userID string) ([]ports.ActiveBidDetail, error) {
	return s.detailsFn(ctx, caller, userID)
}

// newTestContext builds an echo context with the validator installed, the
// given path params set and, when caller has an id, the auth claims injected.
func newTestContext(t *testing.T, method, target string, body io.Reader, caller domain.Caller, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	if caller.UserID != "" {
		c.Set(middleware.CtxUserID, caller.UserID)
		c.Set(middleware.CtxUsername, caller.Username)
		c.Set(middleware.CtxRole, caller.Role)
	}
	return c, rec
}

var (
	testAdmin = domain.Caller{UserID: "admin-1", Username: "root", Role: domain.RoleAdmin}
	testAlice = domain.Caller{UserID: "alice-1", Username: "alice", Role: domain.RoleUser}
)

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}
