package domain

import (
	"fmt"
	"slices"
)

// Owns reports whether itemID is in the user's inventory.
func (u *User) Owns(itemID int64) bool {
	return slices.Contains(u.Items, itemID)
}

// AddItem appends itemID. Duplicates are allowed.
func (u *User) AddItem(itemID int64) {
	u.Items = append(u.Items, itemID)
}

// RemoveItem removes exactly one occurrence of itemID.
func (u *User) RemoveItem(itemID int64) error {
	i := slices.Index(u.Items, itemID)
	if i < 0 {
		return fmt.Errorf("item %d: %w", itemID, ErrNotOwned)
	}
	u.Items = slices.Delete(u.Items, i, i+1)
	return nil
}
