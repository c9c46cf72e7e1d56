package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/limcoins/user-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory versioned user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	seq     int
	updates int

	updateErr error // if set, Update returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

// seed stores u as-is and returns its id.
func (r *stubUserRepo) seed(u *domain.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("user-%d", r.seq)
	}
	if u.Version == 0 {
		u.Version = 1
	}
	r.users[u.ID] = u.Clone()
	return u.ID
}

func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].Clone()
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := user.Clone()
	c.ID = fmt.Sprintf("user-%d", r.seq)
	c.Version = 1
	r.users[c.ID] = c
	return c.Clone(), nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Update mirrors the Mongo compare-and-swap on the version field.
func (r *stubUserRepo) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if stored.Version != user.Version {
		return domain.ErrVersionConflict
	}
	user.Version++
	r.users[user.ID] = user.Clone()
	r.updates++
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) TopByBalance(ctx context.Context, limit int) ([]*domain.User, error) {
	all, _ := r.List(ctx)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Balance > all[j].Balance })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ---------------------------------------------------------------------------
// Locker stubs
// ---------------------------------------------------------------------------

// noopLocker lets workflows on the same user interleave so the version check
// is the only thing serializing them.
type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) { return nil, domain.ErrUserBusy }

// ---------------------------------------------------------------------------
// Journal stub
// ---------------------------------------------------------------------------

type stubJournal struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
	err     error
}

func (j *stubJournal) Record(_ context.Context, e domain.LedgerEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *stubJournal) ListByUser(_ context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if j.entries[i].UserID == userID {
			out = append(out, j.entries[i])
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Remote gateway stubs
// ---------------------------------------------------------------------------

type stubAuctionGateway struct {
	mu     sync.Mutex
	nextID int64
	calls  []string

	createFn  func(sellerID string, itemID int64, startingPrice float64) (int64, error)
	placeFn   func(auctionID int64, bidderID string, amount float64) error
	retractFn func(auctionID int64, bidderID string) error
	fetchFn   func(auctionID int64) (*domain.AuctionView, error)
}

func (g *stubAuctionGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *stubAuctionGateway) callCount(call string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (g *stubAuctionGateway) CreateAuction(_ context.Context, sellerID string, itemID int64, startingPrice float64) (int64, error) {
	g.record("create")
	if g.createFn != nil {
		return g.createFn(sellerID, itemID, startingPrice)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	return 100 + g.nextID, nil
}

func (g *stubAuctionGateway) PlaceBid(_ context.Context, auctionID int64, bidderID string, amount float64) error {
	g.record("place")
	if g.placeFn != nil {
		return g.placeFn(auctionID, bidderID, amount)
	}
	return nil
}

func (g *stubAuctionGateway) RetractBid(_ context.Context, auctionID int64, bidderID string) error {
	g.record("retract")
	if g.retractFn != nil {
		return g.retractFn(auctionID, bidderID)
	}
	return nil
}

func (g *stubAuctionGateway) FetchAuction(_ context.Context, auctionID int64) (*domain.AuctionView, error) {
	g.record("fetch")
	if g.fetchFn != nil {
		return g.fetchFn(auctionID)
	}
	return &domain.AuctionView{ID: auctionID, Status: domain.AuctionOpen}, nil
}

type stubValuationGateway struct {
	values map[int64]float64
	err    error
	calls  int
}

func (g *stubValuationGateway) FetchValue(_ context.Context, itemID int64) (float64, error) {
	g.calls++
	if g.err != nil {
		return 0, g.err
	}
	v, ok := g.values[itemID]
	if !ok {
		return 0, domain.ErrItemUnknown
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Callers
// ---------------------------------------------------------------------------

var adminCaller = domain.Caller{UserID: "admin-1", Username: "root", Role: domain.RoleAdmin}

func selfCaller(userID string) domain.Caller {
	return domain.Caller{UserID: userID, Username: userID, Role: domain.RoleUser}
}
