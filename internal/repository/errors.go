package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the repository. Service code matches them with
// errors.Is and decides how to surface them.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrInventoryExists   = errors.New("inventory already exists for this product")
	ErrDuplicateSKU      = errors.New("product with this SKU already exists")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrOrderProtected    = errors.New("shipped and delivered orders cannot be deleted or cancelled")

	// ErrStockContention means a reservation could not lock its inventory row
	// within the bounded wait. Transient; the caller may retry once.
	ErrStockContention = errors.New("timed out waiting for inventory row lock")
)

// InsufficientStockError reports a failed reservation. Available is the
// quantity observed at failure time, informational only.
type InsufficientStockError struct {
	ProductID int64
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available", e.ProductID, e.Available)
}
