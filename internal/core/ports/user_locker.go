package ports

import "context"

// UserLocker serializes workflows that touch the same user. Locks on different
// user IDs are independent.
type UserLocker interface {
	// Lock blocks until the lock for userID is held or ctx is done. The returned
	// func releases it and is safe to call once.
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}
