package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

func TestBidHandler_PlaceBid(t *testing.T) {
	svc := &stubBidService{
		placeFn: func(ctx context.Context, caller domain.Caller, in ports.PlaceBidInput) error {
			want := ports.PlaceBidInput{UserID: "alice-1", AuctionID: 12, Amount: 150.5}
			if in != want {
				t.Fatalf("unexpected input: %+v", in)
			}
			return nil
		},
	}
	handler := NewBidHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/v1/users/alice-1/bids/12", strings.NewReader(`{"amount":150.5}`), testAlice,
		map[string]string{"id": "alice-1", "auctionId": "12"})
	if err := handler.PlaceBid(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var body placeBidResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := placeBidResponse{UserID: "alice-1", AuctionID: 12, Amount: 150.5}
	if body != want {
		t.Errorf("expected %+v, got %+v", want, body)
	}
}

func TestBidHandler_PlaceBid_InvalidAmount(t *testing.T) {
	svc := &stubBidService{
		placeFn: func(ctx context.Context, caller domain.Caller, in ports.PlaceBidInput) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	handler := NewBidHandler(svc)

	for _, payload := range []string{`{"amount":0}`, `{"amount":-1}`, `{}`} {
		c, _ := newTestContext(t, http.MethodPost, "/v1/users/alice-1/bids/12", strings.NewReader(payload), testAlice,
			map[string]string{"id": "alice-1", "auctionId": "12"})
		if code := httpStatus(t, handler.PlaceBid(c)); code != http.StatusBadRequest {
			t.Fatalf("payload %s: expected 400, got %d", payload, code)
		}
	}
}

func TestBidHandler_PlaceBid_RemoteErrorsPassThrough(t *testing.T) {
	rejection := domain.Reject(domain.ErrBidRejected, "bid must exceed current bid of 200")
	cases := map[string]error{
		"unavailable": domain.ErrRemoteUnavailable,
		"rejected":    rejection,
		"funds":       domain.ErrInsufficientFunds,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubBidService{
				placeFn: func(ctx context.Context, caller domain.Caller, in ports.PlaceBidInput) error {
					return want
				},
			}
			handler := NewBidHandler(svc)

			c, _ := newTestContext(t, http.MethodPost, "/v1/users/alice-1/bids/12", strings.NewReader(`{"amount":10}`), testAlice,
				map[string]string{"id": "alice-1", "auctionId": "12"})
			if err := handler.PlaceBid(c); !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
		})
	}
}

func TestBidHandler_AbandonBid_NotFoundIsNotAnError(t *testing.T) {
	svc := &stubBidService{
		abandonFn: func(ctx context.Context, caller domain.Caller, userID string, auctionID int64) (*ports.AbandonBidResult, error) {
			return &ports.AbandonBidResult{AuctionID: auctionID}, nil
		},
	}
	handler := NewBidHandler(svc)

	c, rec := newTestContext(t, http.MethodDelete, "/v1/users/alice-1/bids/99", nil, testAlice,
		map[string]string{"id": "alice-1", "auctionId": "99"})
	if err := handler.AbandonBid(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp abandonBidResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Found || resp.Removed || resp.Message == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBidHandler_BidDetails(t *testing.T) {
	svc := &stubBidService{
		detailsFn: func(ctx context.Context, caller domain.Caller, userID string) ([]ports.ActiveBidDetail, error) {
			return []ports.ActiveBidDetail{
				{AuctionID: 1, Auction: &domain.AuctionView{ID: 1, CurrentBid: 20, Status: domain.AuctionOpen}},
				{AuctionID: 2, Error: "remote service unavailable"},
			}, nil
		},
	}
	handler := NewBidHandler(svc)

	c, rec := newTestContext(t, http.MethodGet, "/v1/users/alice-1/bids/details", nil, testAlice, map[string]string{"id": "alice-1"})
	if err := handler.BidDetails(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []bidDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0].Auction == nil || resp[1].Error == "" {
		t.Fatalf("unexpected details: %+v", resp)
	}
}

func TestBidHandler_CreateAuction(t *testing.T) {
	svc := &stubBidService{
		createFn: func(ctx context.Context, caller domain.Caller, in ports.CreateAuctionInput) (int64, error) {
			if in.UserID != "alice-1" || in.ItemID != 25 || in.StartingPrice != 0 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return 101, nil
		},
	}
	handler := NewBidHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/v1/users/alice-1/auctions", strings.NewReader(`{"item_id":25,"starting_price":0}`), testAlice,
		map[string]string{"id": "alice-1"})
	if err := handler.CreateAuction(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp createAuctionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Code != http.StatusCreated || resp.AuctionID != 101 {
		t.Fatalf("unexpected response: code=%d body=%+v", rec.Code, resp)
	}
}

func TestBidHandler_CreateAuction_NegativePrice(t *testing.T) {
	handler := NewBidHandler(&stubBidService{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/users/alice-1/auctions", strings.NewReader(`{"item_id":25,"starting_price":-1}`), testAlice,
		map[string]string{"id": "alice-1"})
	if code := httpStatus(t, handler.CreateAuction(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestBidHandler_SellItem(t *testing.T) {
	svc := &stubBidService{
		sellFn: func(ctx context.Context, caller domain.Caller, userID string, itemID int64) (*ports.LiquidationResult, error) {
			return &ports.LiquidationResult{ItemID: itemID, Value: 87.9, Credited: 87, Balance: 1087}, nil
		},
	}
	handler := NewBidHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/v1/users/alice-1/items/25/sell", nil, testAlice,
		map[string]string{"id": "alice-1", "itemId": "25"})
	if err := handler.SellItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp liquidationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Credited != 87 || resp.Balance != 1087 || resp.Value != 87.9 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBidHandler_SellItem_NotOwned(t *testing.T) {
	svc := &stubBidService{
		sellFn: func(ctx context.Context, caller domain.Caller, userID string, itemID int64) (*ports.LiquidationResult, error) {
			return nil, domain.ErrNotOwned
		},
	}
	handler := NewBidHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/v1/users/alice-1/items/25/sell", nil, testAlice,
		map[string]string{"id": "alice-1", "itemId": "25"})
	if err := handler.SellItem(c); !errors.Is(err, domain.ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
}
