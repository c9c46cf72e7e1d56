package ports

import "context"

// ValuationGateway reads current market values from the Item service.
type ValuationGateway interface {
	// FetchValue fails with domain.ErrItemUnknown or domain.ErrRemoteUnavailable.
	FetchValue(ctx context.Context, itemID int64) (float64, error)
}
