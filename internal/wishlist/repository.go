package wishlist

import (
	"context"
	"errors"
)

// ErrUnknownMenuItem is returned when adding a menu item that does not exist.
var ErrUnknownMenuItem = errors.New("menu item does not exist")

// Repository manages the per-account wishlist.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Entry, error)
	// Toggle adds the menu item when absent and removes it when present.
	Toggle(ctx context.Context, userID, menuItemID int64) (ToggleResult, error)
	Remove(ctx context.Context, userID, menuItemID int64) error
}
