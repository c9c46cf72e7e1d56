package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/limcoins/user-service/internal/core/ports"
)

// BidHandler serves the workflows that call the auction and valuation services.
type BidHandler struct {
	service ports.BidService
}

func NewBidHandler(service ports.BidService) *BidHandler {
	return &BidHandler{service: service}
}

// PlaceBid handles POST /v1/users/:id/bids/:auctionId.
//
// @Summary      Place a bid
// @Tags         bids
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string           true  "User ID"
// @Param        auctionId  path      int              true  "Auction ID"
// @Param        body       body      placeBidRequest  true  "Bid amount"
// @Success      201        {object}  placeBidResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Failure      503        {object}  errorResponse
// @Router       /v1/users/{id}/bids/{auctionId} [post]
func (h *BidHandler) PlaceBid(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	auctionID, err := paramInt64(c, "auctionId")
	if err != nil {
		return err
	}
	var req placeBidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	userID := c.Param("id")
	if err := h.service.PlaceBid(c.Request().Context(), caller, ports.PlaceBidInput{
		UserID:    userID,
		AuctionID: auctionID,
		Amount:    req.Amount,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, placeBidResponse{
		UserID:    userID,
		AuctionID: auctionID,
		Amount:    req.Amount,
	})
}

// AbandonBid handles DELETE /v1/users/:id/bids/:auctionId. An auction that is
// not among the user's active bids answers 200 with found=false.
//
// @Summary      Abandon a bid
// @Tags         bids
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "User ID"
// @Param        auctionId  path      int     true  "Auction ID"
// @Success      200        {object}  abandonBidResponse
// @Failure      403        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Failure      503        {object}  errorResponse
// @Router       /v1/users/{id}/bids/{auctionId} [delete]
func (h *BidHandler) AbandonBid(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	auctionID, err := paramInt64(c, "auctionId")
	if err != nil {
		return err
	}

	res, err := h.service.AbandonBid(c.Request().Context(), caller, c.Param("id"), auctionID)
	if err != nil {
		return err
	}

	resp := abandonBidResponse{AuctionID: res.AuctionID, Found: res.Found, Removed: res.Removed}
	if !res.Found {
		resp.Message = "no active bid on this auction"
	}
	return c.JSON(http.StatusOK, resp)
}

// BidDetails handles GET /v1/users/:id/bids/details.
//
// @Summary      Active bids with current auction state
// @Tags         bids
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {array}   bidDetailResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/bids/details [get]
func (h *BidHandler) BidDetails(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	details, err := h.service.ActiveBidDetails(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}

	resp := make([]bidDetailResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, bidDetailResponse{AuctionID: d.AuctionID, Auction: d.Auction, Error: d.Error})
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateAuction handles POST /v1/users/:id/auctions.
//
// @Summary      Put an item up for auction
// @Tags         auctions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User ID"
// @Param        body  body      createAuctionRequest  true  "Listing"
// @Success      201   {object}  createAuctionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/users/{id}/auctions [post]
func (h *BidHandler) CreateAuction(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req createAuctionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	auctionID, err := h.service.CreateAuction(c.Request().Context(), caller, ports.CreateAuctionInput{
		UserID:        c.Param("id"),
		ItemID:        req.ItemID,
		StartingPrice: req.StartingPrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createAuctionResponse{AuctionID: auctionID})
}

// SellItem handles POST /v1/users/:id/items/:itemId/sell.
//
// @Summary      Sell an item to the system
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "User ID"
// @Param        itemId  path      int     true  "Item ID"
// @Success      200     {object}  liquidationResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Failure      502     {object}  errorResponse
// @Failure      503     {object}  errorResponse
// @Router       /v1/users/{id}/items/{itemId}/sell [post]
func (h *BidHandler) SellItem(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	itemID, err := paramInt64(c, "itemId")
	if err != nil {
		return err
	}

	res, err := h.service.LiquidateItem(c.Request().Context(), caller, c.Param("id"), itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, liquidationResponse{
		ItemID:   res.ItemID,
		Value:    res.Value,
		Credited: res.Credited,
		Balance:  res.Balance,
	})
}
