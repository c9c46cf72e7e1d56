package ports

import (
	"context"

	"github.com/limcoins/user-service/internal/core/domain"
)

// LedgerJournal is the append-only audit trail of balance changes.
type LedgerJournal interface {
	Record(ctx context.Context, entry domain.LedgerEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error)
}
