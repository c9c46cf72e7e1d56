package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/limcoins/user-service/internal/core/domain"
)

const collectionLedger = "ledger_entries"

// LedgerJournal implements ports.LedgerJournal. Entries are append-only.
type LedgerJournal struct {
	col *mongo.Collection
}

func NewLedgerJournal(db *mongo.Database) *LedgerJournal {
	return &LedgerJournal{col: db.Collection(collectionLedger)}
}

type ledgerDoc struct {
	UserID       string    `bson:"user_id"`
	Delta        int64     `bson:"delta"`
	BalanceAfter int64     `bson:"balance_after"`
	Reason       string    `bson:"reason"`
	At           time.Time `bson:"at"`
	RecordedAt   time.Time `bson:"recorded_at"`
}

// Record persists one balance change to the ledger_entries audit collection.
func (j *LedgerJournal) Record(ctx context.Context, e domain.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := ledgerDoc{
		UserID:       e.UserID,
		Delta:        e.Delta,
		BalanceAfter: e.BalanceAfter,
		Reason:       e.Reason,
		At:           e.At.UTC(),
		RecordedAt:   time.Now().UTC(),
	}
	if _, err := j.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByUser returns the newest entries first.
func (j *LedgerJournal) ListByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := j.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ledgerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ledger entries: %w", err)
	}

	entries := make([]domain.LedgerEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.LedgerEntry{
			UserID:       d.UserID,
			Delta:        d.Delta,
			BalanceAfter: d.BalanceAfter,
			Reason:       d.Reason,
			At:           d.At.UTC(),
		})
	}
	return entries, nil
}

func (j *LedgerJournal) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := j.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}
