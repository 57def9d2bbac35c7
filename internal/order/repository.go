package order

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an order is not found.
var ErrNotFound = errors.New("order not found")

// ErrEmptyCart is returned when checking out a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// RecentActivityLimit is the number of orders reported as recent activity.
const RecentActivityLimit = 5

// Repository provides operations on the orders and order_items tables.
type Repository interface {
	// Checkout turns the cart of userID into a pending order and empties the cart.
	Checkout(ctx context.Context, userID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)
}
