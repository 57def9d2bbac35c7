package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
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

// List returns the wishlist of userID, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]Entry, error) {
	query := `
		SELECT w.id, m.id, m.name, m.price, m.image_url, w.created_at
		FROM wishlist_items w
		JOIN menu_items m ON w.menu_item_id = m.id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, w.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.MenuItemID, &e.Name, &e.Price, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning wishlist row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wishlist rows: %w", err)
	}

	return entries, nil
}

// Toggle deletes the entry if it exists, otherwise inserts it. Both steps run
// in one transaction so concurrent toggles cannot leave a duplicate.
func (r *PostgresRepository) Toggle(ctx context.Context, userID, menuItemID int64) (ToggleResult, error) {
	var result ToggleResult

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM wishlist_items WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
		if err != nil {
			return fmt.Errorf("removing wishlist entry: %w", err)
		}
		if tag.RowsAffected() > 0 {
			result = Removed
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO wishlist_items (user_id, menu_item_id) VALUES ($1, $2)
			ON CONFLICT (user_id, menu_item_id) DO NOTHING`, userID, menuItemID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrUnknownMenuItem
			}
			return fmt.Errorf("adding wishlist entry: %w", err)
		}
		result = Added
		return nil
	})
	if err != nil {
		return "", err
	}

	return result, nil
}

// Remove deletes an entry. Removing an absent entry is not an error.
func (r *PostgresRepository) Remove(ctx context.Context, userID, menuItemID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
	if err != nil {
		return fmt.Errorf("removing wishlist entry: %w", err)
	}
	return nil
}
