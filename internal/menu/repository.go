package menu

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a menu item is not found.
var ErrNotFound = errors.New("menu item not found")

// ListFilter narrows a menu listing. An empty Category returns every item.
type ListFilter struct {
	Category string
	// ByCategory orders by category then name instead of by id.
	ByCategory bool
}

// Repository provides CRUD operations on the menu_items table.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
