package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

// UserHandler serves account management, coins, items and roster routes.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /v1/users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListUsers(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /v1/users. Admins may choose the role and initial balance.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), caller, ports.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		InitialBalance: req.Balance,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Top handles GET /v1/users/top.
//
// @Summary      Five richest users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /v1/users/top [get]
func (h *UserHandler) Top(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	users, err := h.service.TopByBalance(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /v1/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateUser(c.Request().Context(), caller, c.Param("id"), ports.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddCoins handles POST /v1/users/:id/coins/add.
//
// @Summary      Credit LimCoins
// @Tags         coins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "User ID"
// @Param        body  body      coinsRequest  true  "Amount"
// @Success      200   {object}  coinsResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/coins/add [post]
func (h *UserHandler) AddCoins(c echo.Context) error {
	return h.adjustCoins(c, h.service.AddCoins)
}

// DeductCoins handles POST /v1/users/:id/coins/deduct. An insufficient
// balance answers 200 with success=false.
//
// @Summary      Debit LimCoins
// @Tags         coins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "User ID"
// @Param        body  body      coinsRequest  true  "Amount"
// @Success      200   {object}  coinsResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/coins/deduct [post]
func (h *UserHandler) DeductCoins(c echo.Context) error {
	return h.adjustCoins(c, h.service.DeductCoins)
}

type coinsFunc func(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error)

func (h *UserHandler) adjustCoins(c echo.Context, fn coinsFunc) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req coinsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := c.Param("id")
	ok, err := fn(ctx, caller, userID, *req.Amount)
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(ctx, caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, coinsResponse{UserID: userID, Success: ok, Balance: user.Balance})
}

// Ledger handles GET /v1/users/:id/ledger.
//
// @Summary      Balance history
// @Tags         coins
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "User ID"
// @Param        limit  query     int     false  "Maximum entries (default 50, max 200)"
// @Success      200    {object}  ledgerResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/users/{id}/ledger [get]
func (h *UserHandler) Ledger(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
	}

	userID := c.Param("id")
	entries, err := h.service.LedgerHistory(c.Request().Context(), caller, userID, limit)
	if err != nil {
		return err
	}

	resp := ledgerResponse{UserID: userID, Entries: make([]ledgerEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, ledgerEntryResponse{
			Delta:        e.Delta,
			BalanceAfter: e.BalanceAfter,
			Reason:       e.Reason,
			At:           e.At,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Items handles GET /v1/users/:id/items.
//
// @Summary      List owned items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  itemsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/items [get]
func (h *UserHandler) Items(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	userID := c.Param("id")
	items, err := h.service.ListItems(c.Request().Context(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemsResponse{UserID: userID, Items: items})
}

// AddItem handles POST /v1/users/:id/items/:itemId.
//
// @Summary      Grant an item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "User ID"
// @Param        itemId  path      int     true  "Item ID"
// @Success      200     {object}  itemsResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/users/{id}/items/{itemId} [post]
func (h *UserHandler) AddItem(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	itemID, err := paramInt64(c, "itemId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := c.Param("id")
	if err := h.service.AddItem(ctx, caller, userID, itemID); err != nil {
		return err
	}
	items, err := h.service.ListItems(ctx, caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemsResponse{UserID: userID, Items: items})
}

// ActiveBids handles GET /v1/users/:id/bids.
//
// @Summary      List active bids
// @Tags         bids
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  activeBidsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/bids [get]
func (h *UserHandler) ActiveBids(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	userID := c.Param("id")
	bids, err := h.service.ListActiveBids(c.Request().Context(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activeBidsResponse{UserID: userID, ActiveBids: bids})
}

// TrackBid handles POST /v1/users/:id/bids/:auctionId/track. It records an
// active bid without calling the auction service.
//
// @Summary      Record an active bid locally
// @Tags         bids
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "User ID"
// @Param        auctionId  path      int     true  "Auction ID"
// @Success      200        {object}  activeBidsResponse
// @Failure      403        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Router       /v1/users/{id}/bids/{auctionId}/track [post]
func (h *UserHandler) TrackBid(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	auctionID, err := paramInt64(c, "auctionId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := c.Param("id")
	if err := h.service.AddActiveBid(ctx, caller, userID, auctionID); err != nil {
		return err
	}
	bids, err := h.service.ListActiveBids(ctx, caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activeBidsResponse{UserID: userID, ActiveBids: bids})
}

// CreatedAuctions handles GET /v1/users/:id/auctions.
//
// @Summary      List created auctions
// @Tags         auctions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  createdAuctionsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/auctions [get]
func (h *UserHandler) CreatedAuctions(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	userID := c.Param("id")
	ids, err := h.service.ListCreatedAuctions(c.Request().Context(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, createdAuctionsResponse{UserID: userID, CreatedAuctions: ids})
}

// TrackAuction handles POST /v1/users/:id/auctions/:auctionId/track. It
// records a listing without calling the auction service.
//
// @Summary      Record a created auction locally
// @Tags         auctions
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "User ID"
// @Param        auctionId  path      int     true  "Auction ID"
// @Success      200        {object}  createdAuctionsResponse
// @Failure      403        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Router       /v1/users/{id}/auctions/{auctionId}/track [post]
func (h *UserHandler) TrackAuction(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	auctionID, err := paramInt64(c, "auctionId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := c.Param("id")
	if err := h.service.AddCreatedAuction(ctx, caller, userID, auctionID); err != nil {
		return err
	}
	ids, err := h.service.ListCreatedAuctions(ctx, caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, createdAuctionsResponse{UserID: userID, CreatedAuctions: ids})
}
