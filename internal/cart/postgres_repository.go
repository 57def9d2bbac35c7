package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// List returns the cart lines of userID, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]Line, error) {
	query := `
		SELECT c.id, m.id, m.name, m.price, m.image_url, c.quantity, c.created_at, c.updated_at
		FROM cart_items c
		JOIN menu_items m ON c.menu_item_id = m.id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.MenuItemID, &l.Name, &l.Price, &l.ImageURL, &l.Quantity,
			&l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning cart row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart rows: %w", err)
	}

	return lines, nil
}

// Add upserts a line, adding quantity to any existing line for the same menu item.
func (r *PostgresRepository) Add(ctx context.Context, userID, menuItemID int64, quantity int) (int, error) {
	query := `
		INSERT INTO cart_items (user_id, menu_item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, menu_item_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING quantity`

	var total int
	if err := r.pool.QueryRow(ctx, query, userID, menuItemID, quantity).Scan(&total); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, ErrUnknownMenuItem
		}
		return 0, fmt.Errorf("adding to cart: %w", err)
	}
	return total, nil
}

// SetQuantity replaces the quantity of an existing line.
func (r *PostgresRepository) SetQuantity(ctx context.Context, userID, menuItemID int64, quantity int) error {
	query := `
		UPDATE cart_items SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND menu_item_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, menuItemID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

// Remove deletes one line. Removing an absent line is not an error.
func (r *PostgresRepository) Remove(ctx context.Context, userID, menuItemID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
	if err != nil {
		return fmt.Errorf("removing cart line: %w", err)
	}
	return nil
}

// Clear empties the cart.
func (r *PostgresRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
