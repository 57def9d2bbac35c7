package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `id, name, description, price, category, image_url, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category,
		&it.ImageURL, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts a new menu item.
func (r *PostgresRepository) Create(ctx context.Context, it *Item) error {
	query := `
		INSERT INTO menu_items (name, description, price, category, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, it.Name, it.Description, it.Price, it.Category, it.ImageURL).
		Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting menu item: %w", err)
	}
	return nil
}

// GetByID retrieves a single menu item.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE id = $1`

	it, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying menu item: %w", err)
	}
	return it, nil
}

// List retrieves menu items matching filter.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}
	if filter.ByCategory {
		query += ` ORDER BY category, name`
	} else {
		query += ` ORDER BY id ASC`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}

	return items, nil
}

// Update overwrites the editable fields of a menu item.
func (r *PostgresRepository) Update(ctx context.Context, it *Item) error {
	query := `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5, image_url = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, it.ID, it.Name, it.Description, it.Price, it.Category, it.ImageURL).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("updating menu item: %w", err)
	}
	return nil
}

// Delete removes a menu item.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting menu item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of menu items.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting menu items: %w", err)
	}
	return n, nil
}
