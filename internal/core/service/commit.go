package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/api/metrics"
	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

const (
	defaultCommitAttempts = 5
	defaultCommitTimeout  = 10 * time.Second
)

// committer applies local mutations to a user aggregate under the per-user
// lock and the store's version check.
type committer struct {
	repo     ports.UserRepository
	locker   ports.UserLocker
	journal  ports.LedgerJournal
	log      zerolog.Logger
	attempts int
	timeout  time.Duration
}

func newCommitter(repo ports.UserRepository, locker ports.UserLocker, journal ports.LedgerJournal, log zerolog.Logger) committer {
	return committer{
		repo:     repo,
		locker:   locker,
		journal:  journal,
		log:      log,
		attempts: defaultCommitAttempts,
		timeout:  defaultCommitTimeout,
	}
}

// lock acquires the per-user lock.
func (c committer) lock(ctx context.Context, userID string) (func(), error) {
	start := time.Now()
	unlock, err := c.locker.Lock(ctx, userID)
	metrics.LockWaitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("lock user %s: %w", userID, err)
	}
	return unlock, nil
}

// load fetches the user, failing with domain.ErrUserNotFound.
func (c committer) load(ctx context.Context, userID string) (*domain.User, error) {
	u, err := c.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return u, nil
}

// commit applies fn to a copy of current and persists it. On a version
// conflict the user is reloaded and fn is applied again; fn must therefore
// only touch the local aggregate and never call a remote service.
func (c committer) commit(ctx context.Context, workflow string, current *domain.User, fn func(*domain.User) error) (*domain.User, error) {
	for attempt := 1; ; attempt++ {
		next := current.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.UpdatedAt = time.Now().UTC()

		err := c.repo.Update(ctx, next)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= c.attempts {
			return nil, fmt.Errorf("persist user %s: %w", current.ID, err)
		}

		metrics.CommitConflictsTotal.WithLabelValues(workflow).Inc()
		c.log.Debug().
			Str("user_id", current.ID).
			Str("workflow", workflow).
			Int("attempt", attempt).
			Msg("version conflict, reloading user")

		if current, err = c.load(ctx, current.ID); err != nil {
			return nil, err
		}
	}
}

// detach returns a context that ignores the caller's cancellation. It is used
// once a remote call has succeeded so the local commit always runs to the end.
func (c committer) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
}

// journalEntry writes a ledger audit record. Failures are logged, not returned.
func (c committer) journalEntry(ctx context.Context, u *domain.User, delta int64, reason string) {
	if c.journal == nil || delta == 0 {
		return
	}
	entry := domain.LedgerEntry{
		UserID:       u.ID,
		Delta:        delta,
		BalanceAfter: u.Balance,
		Reason:       reason,
		At:           time.Now().UTC(),
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID).Str("reason", reason).Msg("failed to record ledger entry")
	}
}

func authorize(caller domain.Caller, userID string) error {
	if !caller.CanActOn(userID) {
		return domain.ErrForbidden
	}
	return nil
}

func requireAdmin(caller domain.Caller) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// outcome maps an error to the short label used in metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrNotOwned):
		return "not_owned"
	case errors.Is(err, domain.ErrAlreadyActive), errors.Is(err, domain.ErrAlreadyListed):
		return "duplicate_membership"
	case errors.Is(err, domain.ErrBidRejected), errors.Is(err, domain.ErrAuctionRejected):
		return "rejected"
	case errors.Is(err, domain.ErrNoStandingBid):
		return "no_standing_bid"
	case errors.Is(err, domain.ErrAuctionNotFound), errors.Is(err, domain.ErrItemUnknown):
		return "remote_not_found"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return "remote_unavailable"
	case errors.Is(err, domain.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, domain.ErrUserBusy):
		return "user_busy"
	default:
		return "error"
	}
}
