package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("journal dispatcher closed")

// JournalDispatcher writes ledger entries off the request path. Entries are
// sharded by user ID so one user's entries are written in the order they were
// recorded. It implements ports.LedgerJournal; reads go straight to the store.
type JournalDispatcher struct {
	store   ports.LedgerJournal
	workers []chan domain.LedgerEntry
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewJournalDispatcher creates a dispatcher with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewJournalDispatcher(numWorkers int, store ports.LedgerJournal, log zerolog.Logger) *JournalDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &JournalDispatcher{
		store:   store,
		workers: make([]chan domain.LedgerEntry, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LedgerEntry, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. They run until Close drains them.
func (d *JournalDispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record enqueues entry for its user's shard. It blocks while the shard is
// full, until ctx is done.
func (d *JournalDispatcher) Record(ctx context.Context, entry domain.LedgerEntry) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.workers[d.shardIndex(entry.UserID)] <- entry:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *JournalDispatcher) ListByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	return d.store.ListByUser(ctx, userID, limit)
}

// Close stops accepting entries and waits until every queued entry has been
// written or ctx is done.
func (d *JournalDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *JournalDispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *JournalDispatcher) runWorker(id int, ch <-chan domain.LedgerEntry) {
	defer d.wg.Done()
	for entry := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := d.store.Record(ctx, entry)
		cancel()
		if err != nil {
			d.log.Error().Err(err).
				Str("user_id", entry.UserID).
				Str("reason", entry.Reason).
				Int("worker_id", id).
				Msg("ledger entry write failed")
		}
	}
}
