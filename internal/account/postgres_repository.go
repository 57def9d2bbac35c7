package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, email, name, password, role, image, email_verified,
		       image_updated_at, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Image,
		&a.EmailVerified, &a.ImageUpdatedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account. The role defaults to user when unset.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	if a.Role == "" {
		a.Role = RoleUser
	}

	query := `
		INSERT INTO users (email, name, password, role, image, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, image_updated_at, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.Email,
		a.Name,
		a.PasswordHash,
		a.Role,
		a.Image,
		a.EmailVerified,
	).Scan(&a.ID, &a.ImageUpdatedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// GetByEmail retrieves a single account by exact email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying account by email: %w", err)
	}
	return a, nil
}

// GetByID retrieves a single account by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying account by id: %w", err)
	}
	return a, nil
}

// List retrieves all accounts, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

// UpdateRole sets the role of the account with the given id.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id int64, role Role) (*Account, error) {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + accountColumns

	a, err := scanAccount(r.pool.QueryRow(ctx, query, role, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating account role: %w", err)
	}
	return a, nil
}

// UpdateProfile sets the name and, when upd.Image is non-nil, the avatar of the account
// with the given email. Changing the avatar bumps image_updated_at.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (*Account, error) {
	var row pgx.Row
	if upd.Image == nil {
		query := `
			UPDATE users
			SET name = $1, updated_at = NOW()
			WHERE email = $2
			RETURNING ` + accountColumns
		row = r.pool.QueryRow(ctx, query, upd.Name, email)
	} else {
		query := `
			UPDATE users
			SET name = $1, image = NULLIF($2, ''), image_updated_at = NOW(), updated_at = NOW()
			WHERE email = $3
			RETURNING ` + accountColumns
		row = r.pool.QueryRow(ctx, query, upd.Name, *upd.Image, email)
	}

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating account profile: %w", err)
	}
	return a, nil
}

// CountAll returns the total number of accounts.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

// CountByRole returns the number of accounts holding the given role.
func (r *PostgresRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE role = $1", role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting accounts by role: %w", err)
	}
	return count, nil
}
