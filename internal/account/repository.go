package account

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an account record is not found.
var ErrNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when an account with the same email already exists.
var ErrDuplicateEmail = errors.New("email already exists")

// Repository provides operations on the users table. Email lookups are exact matches.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateRole(ctx context.Context, id int64, role Role) (*Account, error)
	UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (*Account, error)
	CountAll(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role Role) (int, error)
}
