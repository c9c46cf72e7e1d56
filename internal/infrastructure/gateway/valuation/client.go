// Package valuation is the HTTP client for the remote Item (Pokemon)
// valuation service.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/infrastructure/gateway"
)

// Client implements ports.ValuationGateway.
type Client struct {
	http *gateway.Client
}

func New(cfg gateway.Config, log zerolog.Logger) (*Client, error) {
	c, err := gateway.NewClient("valuation", cfg, log)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

type pokemonResponse struct {
	ID        int64    `json:"id"`
	RealValue *float64 `json:"real_value"`
}

// FetchValue returns the current market value of itemID.
func (c *Client) FetchValue(ctx context.Context, itemID int64) (float64, error) {
	var out pokemonResponse
	err := c.http.Do(ctx, "fetch_value", http.MethodGet, fmt.Sprintf("/pokemons/%d", itemID), nil, &out)

	var se *gateway.StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusNotFound {
			return 0, fmt.Errorf("item %d: %w", itemID, domain.ErrItemUnknown)
		}
		return 0, fmt.Errorf("fetch value of item %d: %w", itemID, se)
	}
	if err != nil {
		return 0, err
	}
	if out.RealValue == nil {
		return 0, fmt.Errorf("item %d: missing real_value: %w", itemID, domain.ErrInvalidValuation)
	}
	return *out.RealValue, nil
}
