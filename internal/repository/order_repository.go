package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/fjod/go_shop/internal/domain"
)

// ReservationLine is one (product, quantity) pair to reserve during order
// placement.
type ReservationLine struct {
	ProductID int64
	Quantity  int
}

const orderColumns = `id, reference, user_id, cart_id, address, order_status, total_amount, items, order_date, created_at, updated_at`

// PlaceOrder is the durable unit of order placement: every reservation, the
// order insert, the initial tracking entry and the cart clear commit together
// or not at all. Any failure rolls the whole transaction back, so inventory
// is never decremented without an order nor an order created without
// decremented inventory.
func (r *Repository) PlaceOrder(ctx context.Context, order *domain.Order, lines []ReservationLine) error {
	// Locking rows in a fixed order keeps two overlapping placements from
	// deadlocking on each other's products.
	sorted := make([]ReservationLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	return r.transact(ctx, func(tx *sqlx.Tx) error {
		if err := setLockTimeout(ctx, tx); err != nil {
			return err
		}

		for _, line := range sorted {
			if err := reserveStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		itemsJSON, err := json.Marshal(order.Items)
		if err != nil {
			return fmt.Errorf("marshal order items: %w", err)
		}

		insert := `INSERT INTO orders (reference, user_id, cart_id, address, order_status, total_amount, items)
		           VALUES ($1, $2, $3, $4, $5, $6, $7)
		           RETURNING id, order_date, created_at, updated_at`
		err = tx.QueryRowxContext(ctx, insert,
			order.Reference,
			order.UserID,
			order.CartID,
			order.Address,
			order.Status,
			order.TotalAmount,
			itemsJSON,
		).Scan(&order.ID, &order.OrderDate, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertTracking(ctx, tx, order.ID, string(order.Status), nil, nil); err != nil {
			return err
		}

		if order.CartID != nil {
			if err := clearCartItems(ctx, tx, *order.CartID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRowxContext(ctx, query, id))
}

func (r *Repository) ListOrders(ctx context.Context, userID int64, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []interface{}{userID}
	if status != nil {
		query += ` AND order_status = $2 ORDER BY order_date DESC LIMIT $3 OFFSET $4`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY order_date DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order along its lifecycle. The current status is
// read under a row lock so two conflicting transitions serialize, and only
// the enumerated transitions are accepted.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	var updated *domain.Order
	err := r.transact(ctx, func(tx *sqlx.Tx) error {
		var current domain.OrderStatus
		err := tx.GetContext(ctx, &current,
			`SELECT order_status FROM orders WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order row: %w", err)
		}

		if next == domain.OrderStatusCancelled && current.Protected() {
			return ErrOrderProtected
		}
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current, next)
		}

		update := `UPDATE orders SET order_status = $1, updated_at = now() WHERE id = $2
		           RETURNING ` + orderColumns
		updated, err = r.scanOrder(tx.QueryRowxContext(ctx, update, next, id))
		if err != nil {
			return err
		}
		return insertTracking(ctx, tx, id, string(next), nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOrder removes an order unless it has shipped or been delivered.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1 AND order_status NOT IN ('shipped', 'delivered')`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for order delete: %w", err)
	}
	if affected == 0 {
		var status domain.OrderStatus
		err := r.db.GetContext(ctx, &status, `SELECT order_status FROM orders WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("query order status: %w", err)
		}
		return ErrOrderProtected
	}
	return nil
}

// AddTracking appends an entry to the order's tracking log.
func (r *Repository) AddTracking(ctx context.Context, orderID int64, status string, location, notes *string) (*domain.TrackingEntry, error) {
	var entry *domain.TrackingEntry
	err := r.transact(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID); err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}

		query := `INSERT INTO order_tracking (order_id, status, location, notes)
		          VALUES ($1, $2, $3, $4)
		          RETURNING id, order_id, status, location, notes, timestamp`
		var e domain.TrackingEntry
		if err := tx.GetContext(ctx, &e, query, orderID, status, location, notes); err != nil {
			return fmt.Errorf("insert tracking entry: %w", err)
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) ListTracking(ctx context.Context, orderID int64) ([]*domain.TrackingEntry, error) {
	var entries []*domain.TrackingEntry
	query := `SELECT id, order_id, status, location, notes, timestamp
	          FROM order_tracking WHERE order_id = $1 ORDER BY timestamp, id`
	if err := r.db.SelectContext(ctx, &entries, query, orderID); err != nil {
		return nil, fmt.Errorf("list tracking entries: %w", err)
	}
	return entries, nil
}

func insertTracking(ctx context.Context, tx *sqlx.Tx, orderID int64, status string, location, notes *string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO order_tracking (order_id, status, location, notes) VALUES ($1, $2, $3, $4)`,
		orderID, status, location, notes)
	if err != nil {
		return fmt.Errorf("insert tracking entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	err := row.Scan(
		&order.ID,
		&order.Reference,
		&order.UserID,
		&order.CartID,
		&order.Address,
		&order.Status,
		&order.TotalAmount,
		&itemsJSON,
		&order.OrderDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}
