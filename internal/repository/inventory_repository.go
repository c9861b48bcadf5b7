package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fjod/go_shop/internal/domain"
)

// lockTimeout bounds how long a reservation waits on a contended inventory
// row before failing with ErrStockContention instead of blocking. Tests
// shorten it.
var lockTimeout = "3s"

func (r *Repository) CreateInventory(ctx context.Context, inv *domain.Inventory) error {
	query := `INSERT INTO inventory (product_id, quantity_in_stock, reorder_level)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, inv.ProductID, inv.QuantityInStock, inv.ReorderLevel).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrInventoryExists
			case "23503":
				return ErrProductNotFound
			}
		}
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

func (r *Repository) GetInventory(ctx context.Context, id int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	query := `SELECT id, product_id, quantity_in_stock, reorder_level, last_restocked_at, created_at, updated_at
	          FROM inventory WHERE id = $1`
	err := r.db.GetContext(ctx, &inv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory by id: %w", err)
	}
	return &inv, nil
}

func (r *Repository) GetInventoryByProduct(ctx context.Context, productID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	query := `SELECT id, product_id, quantity_in_stock, reorder_level, last_restocked_at, created_at, updated_at
	          FROM inventory WHERE product_id = $1`
	err := r.db.GetContext(ctx, &inv, query, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory by product: %w", err)
	}
	return &inv, nil
}

func (r *Repository) ListInventories(ctx context.Context, lowStockOnly bool, limit, offset int) ([]*domain.Inventory, error) {
	query := `SELECT id, product_id, quantity_in_stock, reorder_level, last_restocked_at, created_at, updated_at
	          FROM inventory`
	if lowStockOnly {
		query += ` WHERE quantity_in_stock <= reorder_level`
	}
	query += ` ORDER BY id LIMIT $1 OFFSET $2`

	var inventories []*domain.Inventory
	if err := r.db.SelectContext(ctx, &inventories, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	return inventories, nil
}

// UpdateReorderLevel is the only direct inventory update exposed.
// quantity_in_stock is never written to an arbitrary value; it moves only
// through ReserveStock and Restock.
func (r *Repository) UpdateReorderLevel(ctx context.Context, id int64, reorderLevel int) (*domain.Inventory, error) {
	if reorderLevel < 0 {
		return nil, ErrInvalidQuantity
	}
	var inv domain.Inventory
	query := `UPDATE inventory SET reorder_level = $1, updated_at = now() WHERE id = $2
	          RETURNING id, product_id, quantity_in_stock, reorder_level, last_restocked_at, created_at, updated_at`
	err := r.db.GetContext(ctx, &inv, query, reorderLevel, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update reorder level: %w", err)
	}
	return &inv, nil
}

// Restock atomically adds stock and stamps last_restocked_at.
func (r *Repository) Restock(ctx context.Context, id int64, quantityToAdd int) (*domain.Inventory, error) {
	if quantityToAdd < 1 {
		return nil, ErrInvalidQuantity
	}
	var inv domain.Inventory
	query := `UPDATE inventory
	          SET quantity_in_stock = quantity_in_stock + $1,
	              last_restocked_at = now(),
	              updated_at        = now()
	          WHERE id = $2
	          RETURNING id, product_id, quantity_in_stock, reorder_level, last_restocked_at, created_at, updated_at`
	err := r.db.GetContext(ctx, &inv, query, quantityToAdd, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("restock inventory: %w", err)
	}
	return &inv, nil
}

// ReserveStock runs a single reservation in its own transaction. Order
// placement uses reserveStock directly so all its reservations share one
// transaction with the order insert and cart clear.
func (r *Repository) ReserveStock(ctx context.Context, productID int64, quantity int) error {
	return r.transact(ctx, func(tx *sqlx.Tx) error {
		if err := setLockTimeout(ctx, tx); err != nil {
			return err
		}
		return reserveStock(ctx, tx, productID, quantity)
	})
}

// reserveStock is the serialization point for all stock movement: one
// conditional UPDATE that checks and decrements in the same atomic step.
// A concurrent writer holding the row lock makes this statement block until
// that transaction commits, after which the predicate is re-evaluated, so
// quantity_in_stock can never go negative and N contenders against K units
// see exactly K successes.
func reserveStock(ctx context.Context, tx *sqlx.Tx, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE inventory
		 SET quantity_in_stock = quantity_in_stock - $1, updated_at = now()
		 WHERE product_id = $2 AND quantity_in_stock >= $1`,
		quantity, productID)
	if err != nil {
		return mapLockError(err, productID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for product %d: %w", productID, err)
	}
	if affected == 0 {
		var available int
		err := tx.GetContext(ctx, &available,
			`SELECT quantity_in_stock FROM inventory WHERE product_id = $1`, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInventoryNotFound
		}
		if err != nil {
			return mapLockError(err, productID)
		}
		return &InsufficientStockError{ProductID: productID, Available: available}
	}
	return nil
}

func setLockTimeout(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

// mapLockError turns a lock_timeout expiry (pq class 55P03) into the
// transient ErrStockContention.
func mapLockError(err error, productID int64) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "55P03" {
		return ErrStockContention
	}
	return fmt.Errorf("reserve stock for product %d: %w", productID, err)
}
