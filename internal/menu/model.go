package menu

import "time"

// Category values accepted for menu items.
var Categories = []string{"bestseller", "coffee", "noncoffee", "food", "dessert", "snack", "merchandise"}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Item represents a row in the menu_items table. Price is in the smallest currency unit.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Category    string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
