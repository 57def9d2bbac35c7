package cart

import "time"

// Line is a cart_items row joined with its menu item.
type Line struct {
	ID         int64
	MenuItemID int64
	Name       string
	Price      int64
	ImageURL   *string
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Subtotal returns Price * Quantity.
func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}
