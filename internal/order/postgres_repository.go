package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
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

// Checkout runs in a single transaction. Cart rows are locked so a concurrent
// checkout of the same cart waits and then finds it empty.
func (r *PostgresRepository) Checkout(ctx context.Context, userID int64) (*Order, error) {
	var o *Order

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT m.id, m.name, m.price, c.quantity
			FROM cart_items c
			JOIN menu_items m ON c.menu_item_id = m.id
			WHERE c.user_id = $1
			ORDER BY c.id
			FOR UPDATE OF c`, userID)
		if err != nil {
			return fmt.Errorf("reading cart: %w", err)
		}

		var items []Item
		var total int64
		for rows.Next() {
			var it Item
			var menuItemID int64
			if err := rows.Scan(&menuItemID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
				rows.Close()
				return fmt.Errorf("scanning cart row: %w", err)
			}
			it.MenuItemID = &menuItemID
			total += it.UnitPrice * int64(it.Quantity)
			items = append(items, it)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating cart rows: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		o = &Order{UserID: userID, TotalAmount: total, Status: StatusPending, Items: items}
		err = tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, total_amount, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`, userID, total, StatusPending).
			Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(`
				INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)`, o.ID, it.MenuItemID, it.Name, it.Quantity, it.UnitPrice)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting order items: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// ListByUser returns the orders of userID, newest first, with their lines.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	query := `
		SELECT o.id, o.user_id, u.name, u.email, o.total_amount, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	return r.listOrders(ctx, query, userID)
}

// ListAll returns every order, newest first, with the customer's name and email.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `
		SELECT o.id, o.user_id, u.name, u.email, o.total_amount, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC, o.id DESC`

	return r.listOrders(ctx, query)
}

func (r *PostgresRepository) listOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	index := map[int64]int{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.UserName, &o.UserEmail, &o.TotalAmount, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		o.Items = []Item{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := r.pool.Query(ctx, `
		SELECT order_id, menu_item_id, name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var it Item
		if err := itemRows.Scan(&orderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the status of an order.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	query := `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, total_amount, status, created_at, updated_at`

	var o Order
	err := r.pool.QueryRow(ctx, query, id, status).
		Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	return &o, nil
}

// Stats computes the dashboard summary.
func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM menu_items),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders)`).
		Scan(&s.TotalUsers, &s.TotalMenuItems, &s.TotalOrders, &s.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("querying totals: %w", err)
	}
	if s.TotalOrders > 0 {
		s.AverageOrderValue = float64(s.TotalRevenue) / float64(s.TotalOrders)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT o.id, COALESCE(u.name, u.email), o.status, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1`, RecentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("querying recent orders: %w", err)
	}
	defer rows.Close()

	s.RecentActivity = []Activity{}
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.OrderID, &a.UserName, &a.Status, &a.Amount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning recent order row: %w", err)
		}
		s.RecentActivity = append(s.RecentActivity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent order rows: %w", err)
	}

	return &s, nil
}
