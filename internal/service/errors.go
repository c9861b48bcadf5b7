package service

import "errors"

var (
	// ErrForbidden means the entity exists but belongs to another user.
	ErrForbidden = errors.New("resource belongs to another user")

	// ErrEmptyCart means order placement was attempted from a cart with no items.
	ErrEmptyCart = errors.New("cannot create order from empty cart")

	// ErrInvalidPrice rejects negative catalog prices.
	ErrInvalidPrice = errors.New("price must not be negative")
)
