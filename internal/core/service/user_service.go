package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/limcoins/user-service/internal/api/metrics"
	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

const (
	topUsersLimit       = 5
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// UserService implements account management and the local-only ledger,
// inventory and roster operations.
type UserService struct {
	c               committer
	startingBalance int64
	log             zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	locker ports.UserLocker,
	journal ports.LedgerJournal,
	startingBalance int64,
	log zerolog.Logger,
) *UserService {
	if startingBalance <= 0 {
		startingBalance = domain.DefaultStartingBalance
	}
	return &UserService{
		c:               newCommitter(repo, locker, journal, log),
		startingBalance: startingBalance,
		log:             log,
	}
}

// Register creates an account with a hashed password, the default role and
// the starting LimCoins grant. Only admins may create admins or choose the
// initial balance.
func (s *UserService) Register(ctx context.Context, caller domain.Caller, in ports.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("register: username, email and password are required: %w", domain.ErrInvalidInput)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("register: unknown role %q: %w", role, domain.ErrInvalidInput)
	}
	if role == domain.RoleAdmin && !caller.IsAdmin() {
		return nil, fmt.Errorf("register: only admins can create admins: %w", domain.ErrForbidden)
	}

	balance := s.startingBalance
	if in.InitialBalance != 0 {
		if !caller.IsAdmin() {
			return nil, fmt.Errorf("register: initial balance: %w", domain.ErrForbidden)
		}
		if in.InitialBalance < 0 {
			return nil, fmt.Errorf("register: negative initial balance: %w", domain.ErrInvalidInput)
		}
		balance = in.InitialBalance
	}

	exists, err := s.c.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.c.repo.Create(ctx, &domain.User{
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    string(hash),
		Role:            role,
		Balance:         balance,
		Items:           []int64{},
		ActiveBids:      []int64{},
		CreatedAuctions: []int64{},
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		// The store's unique indexes catch races the pre-check cannot.
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.CoinsMovedTotal.WithLabelValues("credit", "grant").Add(float64(balance))
	s.c.journalEntry(ctx, created, balance, domain.ReasonRegisterGrant)
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Str("role", created.Role).Msg("user registered")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, caller domain.Caller, userID string) (*domain.User, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}
	return s.c.load(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context, caller domain.Caller) ([]*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.c.repo.List(ctx)
}

// TopByBalance returns the five richest users.
func (s *UserService) TopByBalance(ctx context.Context, caller domain.Caller) ([]*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.c.repo.TopByBalance(ctx, topUsersLimit)
}

func (s *UserService) UpdateUser(ctx context.Context, caller domain.Caller, userID string, in ports.UpdateUserInput) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if in.Role != "" && !domain.ValidRole(in.Role) {
		return nil, fmt.Errorf("update user: unknown role %q: %w", in.Role, domain.ErrInvalidInput)
	}

	return s.mutate(ctx, "update_user", userID, func(u *domain.User) error {
		if v := strings.TrimSpace(in.Username); v != "" {
			u.Username = v
		}
		if v := strings.TrimSpace(in.Email); v != "" {
			u.Email = v
		}
		if in.Role != "" {
			u.Role = in.Role
		}
		return nil
	})
}

// DeleteUser removes the user record. The auction service is not told about
// the user's remaining active bids.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Caller, userID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	unlock, err := s.c.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	u, err := s.c.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.c.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}

	ev := s.log.Info()
	if len(u.ActiveBids) > 0 {
		ev = s.log.Warn().Ints64("orphaned_active_bids", u.ActiveBids)
	}
	ev.Str("user_id", userID).Str("deleted_by", caller.UserID).Msg("user deleted")
	return nil
}

// AddCoins credits amount to the user. Only admins can mint LimCoins.
func (s *UserService) AddCoins(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error) {
	if err := requireAdmin(caller); err != nil {
		return false, err
	}
	if amount < 0 {
		return false, fmt.Errorf("add coins: %w", domain.ErrInvalidInput)
	}

	u, err := s.mutate(ctx, "add_coins", userID, func(u *domain.User) error {
		return u.Credit(amount)
	})
	if err != nil {
		return false, err
	}

	metrics.CoinsMovedTotal.WithLabelValues("credit", "add").Add(float64(amount))
	s.c.journalEntry(ctx, u, amount, domain.ReasonCoinsAdd)
	return true, nil
}

// DeductCoins debits amount from the user. An insufficient balance returns
// false and leaves the balance unchanged.
func (s *UserService) DeductCoins(ctx context.Context, caller domain.Caller, userID string, amount int64) (bool, error) {
	if err := authorize(caller, userID); err != nil {
		return false, err
	}
	if amount < 0 {
		return false, fmt.Errorf("deduct coins: %w", domain.ErrInvalidInput)
	}

	u, err := s.mutate(ctx, "deduct_coins", userID, func(u *domain.User) error {
		return u.Debit(amount)
	})
	if errors.Is(err, domain.ErrInsufficientFunds) {
		s.log.Info().Str("user_id", userID).Int64("amount", amount).Msg("deduct refused: insufficient funds")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.CoinsMovedTotal.WithLabelValues("debit", "deduct").Add(float64(amount))
	s.c.journalEntry(ctx, u, -amount, domain.ReasonCoinsDeduct)
	return true, nil
}

func (s *UserService) LedgerHistory(ctx context.Context, caller domain.Caller, userID string, limit int) ([]domain.LedgerEntry, error) {
	if err := authorize(caller, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if _, err := s.c.load(ctx, userID); err != nil {
		return nil, err
	}
	if s.c.journal == nil {
		return []domain.LedgerEntry{}, nil
	}
	return s.c.journal.ListByUser(ctx, userID, limit)
}

// AddItem grants an item to the user. Items carry market value, so only
// admins (or the settlement process acting as one) may grant them.
func (s *UserService) AddItem(ctx context.Context, caller domain.Caller, userID string, itemID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	_, err := s.mutate(ctx, "add_item", userID, func(u *domain.User) error {
		u.AddItem(itemID)
		return nil
	})
	return err
}

func (s *UserService) ListItems(ctx context.Context, caller domain.Caller, userID string) ([]int64, error) {
	u, err := s.GetUser(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	return u.Items, nil
}

func (s *UserService) ListActiveBids(ctx context.Context, caller domain.Caller, userID string) ([]int64, error) {
	u, err := s.GetUser(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	return u.ActiveBids, nil
}

func (s *UserService) ListCreatedAuctions(ctx context.Context, caller domain.Caller, userID string) ([]int64, error) {
	u, err := s.GetUser(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	return u.CreatedAuctions, nil
}

// AddActiveBid records an active bid without calling the auction service. It
// is meant for re-syncing the roster after the auction service already holds
// the bid.
func (s *UserService) AddActiveBid(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	_, err := s.mutate(ctx, "add_active_bid", userID, func(u *domain.User) error {
		return u.Activate(auctionID)
	})
	return err
}

// AddCreatedAuction records a listing without calling the auction service.
func (s *UserService) AddCreatedAuction(ctx context.Context, caller domain.Caller, userID string, auctionID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	_, err := s.mutate(ctx, "add_created_auction", userID, func(u *domain.User) error {
		return u.RecordCreated(auctionID)
	})
	return err
}

// mutate runs a local-only mutation: lock, load, apply, persist.
func (s *UserService) mutate(ctx context.Context, workflow, userID string, fn func(*domain.User) error) (u *domain.User, err error) {
	defer func() { metrics.WorkflowsTotal.WithLabelValues(workflow, outcome(err)).Inc() }()

	unlock, err := s.c.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.c.commit(ctx, workflow, current, fn)
}
