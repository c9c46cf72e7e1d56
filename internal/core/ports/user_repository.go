package ports

import (
	"context"

	"github.com/limcoins/user-service/internal/core/domain"
)

// UserRepository defines persistence for the User aggregate.
type UserRepository interface {
	// Create inserts a new user and returns it with its store-assigned ID.
	// A username or email collision returns domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ExistsByUsernameOrEmail reports collisions before a registration is attempted.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Update persists all mutable fields only if the stored version still equals
	// user.Version, returning domain.ErrVersionConflict otherwise. On success
	// user.Version is advanced to the stored value.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)
	// TopByBalance returns at most limit users ordered by balance descending.
	TopByBalance(ctx context.Context, limit int) ([]*domain.User, error)
}
