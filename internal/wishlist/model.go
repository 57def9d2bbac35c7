package wishlist

import "time"

// Entry is a wishlist_items row joined with its menu item.
type Entry struct {
	ID         int64
	MenuItemID int64
	Name       string
	Price      int64
	ImageURL   *string
	CreatedAt  time.Time
}

// ToggleResult reports what a toggle did.
type ToggleResult string

const (
	Added   ToggleResult = "added"
	Removed ToggleResult = "removed"
)
