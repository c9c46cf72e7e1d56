package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultStartingBalance is the LimCoins grant given on registration.
const DefaultStartingBalance int64 = 1000

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User is the aggregate root. Balance, Items, ActiveBids and CreatedAuctions are
// only mutated through the ledger, inventory and roster methods, and every
// persisted mutation bumps Version.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	Balance         int64     `json:"balance"`
	Items           []int64   `json:"items"`
	ActiveBids      []int64   `json:"active_bids"`
	CreatedAuctions []int64   `json:"created_auctions"`
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Clone returns a deep copy so a failed mutation never leaks into the caller's value.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Items = append([]int64(nil), u.Items...)
	c.ActiveBids = append([]int64(nil), u.ActiveBids...)
	c.CreatedAuctions = append([]int64(nil), u.CreatedAuctions...)
	return &c
}

// Caller identifies who is invoking a workflow. It is passed explicitly instead
// of being read from request context so the core stays transport-agnostic.
type Caller struct {
	UserID   string
	Username string
	Role     string
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// CanActOn reports whether the caller may operate on the user with id userID.
func (c Caller) CanActOn(userID string) bool {
	return c.IsAdmin() || (c.UserID != "" && c.UserID == userID)
}
