package cart

import (
	"context"
	"errors"
)

// ErrLineNotFound is returned when the cart has no line for a menu item.
var ErrLineNotFound = errors.New("item not found in cart")

// ErrUnknownMenuItem is returned when adding a menu item that does not exist.
var ErrUnknownMenuItem = errors.New("menu item does not exist")

// Repository manages the per-account cart. All operations are scoped to userID.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Line, error)
	// Add inserts a line or adds quantity to the existing one and returns the resulting quantity.
	Add(ctx context.Context, userID, menuItemID int64, quantity int) (int, error)
	// SetQuantity replaces the quantity of an existing line.
	SetQuantity(ctx context.Context, userID, menuItemID int64, quantity int) error
	Remove(ctx context.Context, userID, menuItemID int64) error
	Clear(ctx context.Context, userID int64) error
}
