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

// GetOrCreateCart returns the user's cart, creating it on first use.
func (r *Repository) GetOrCreateCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	query := `INSERT INTO shopping_carts (user_id) VALUES ($1)
	          ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	          RETURNING id, user_id, created_at, last_modified`
	if err := r.db.GetContext(ctx, &cart, query, userID); err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	if err := r.loadCartItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart loads a cart and its line items. The item slice is the cart
// snapshot order placement works from.
func (r *Repository) GetCart(ctx context.Context, cartID int64) (*domain.Cart, error) {
	var cart domain.Cart
	query := `SELECT id, user_id, created_at, last_modified FROM shopping_carts WHERE id = $1`
	err := r.db.GetContext(ctx, &cart, query, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart by id: %w", err)
	}
	if err := r.loadCartItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) loadCartItems(ctx context.Context, cart *domain.Cart) error {
	query := `SELECT id, cart_id, product_id, quantity, created_at, updated_at
	          FROM shopping_cart_items WHERE cart_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &cart.Items, query, cart.ID); err != nil {
		return fmt.Errorf("load cart items: %w", err)
	}
	return nil
}

// AddCartItem adds quantity of a product to the cart, merging with an
// existing line for the same product.
func (r *Repository) AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var item domain.CartItem
	query := `INSERT INTO shopping_cart_items (cart_id, product_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (cart_id, product_id)
	          DO UPDATE SET quantity = shopping_cart_items.quantity + EXCLUDED.quantity,
	                        updated_at = now()
	          RETURNING id, cart_id, product_id, quantity, created_at, updated_at`
	if err := r.db.GetContext(ctx, &item, query, cartID, productID, quantity); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	if err := r.touchCart(ctx, cartID); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem sets the quantity of an existing cart line.
func (r *Repository) UpdateCartItem(ctx context.Context, cartID, productID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var item domain.CartItem
	query := `UPDATE shopping_cart_items SET quantity = $1, updated_at = now()
	          WHERE cart_id = $2 AND product_id = $3
	          RETURNING id, cart_id, product_id, quantity, created_at, updated_at`
	err := r.db.GetContext(ctx, &item, query, quantity, cartID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	if err := r.touchCart(ctx, cartID); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveCartItem deletes one product's line from the cart.
func (r *Repository) RemoveCartItem(ctx context.Context, cartID, productID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for cart item delete: %w", err)
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return r.touchCart(ctx, cartID)
}

func (r *Repository) touchCart(ctx context.Context, cartID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE shopping_carts SET last_modified = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

// clearCartItems removes every line item but keeps the cart row. Runs inside
// the order placement transaction so a rollback restores the items.
func clearCartItems(ctx context.Context, tx *sqlx.Tx, cartID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shopping_cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE shopping_carts SET last_modified = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cleared cart: %w", err)
	}
	return nil
}
