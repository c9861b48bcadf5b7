package domain

import "time"

// Inventory is the single source of truth for stock. quantity_in_stock is
// mutated only by reservation (decrement) and restock (increment) statements
// at the storage layer, so it can never observe a negative value.
type Inventory struct {
	ID              int64      `db:"id" json:"id"`
	ProductID       int64      `db:"product_id" json:"product_id"`
	QuantityInStock int        `db:"quantity_in_stock" json:"quantity_in_stock"`
	ReorderLevel    int        `db:"reorder_level" json:"reorder_level"`
	LastRestockedAt *time.Time `db:"last_restocked_at" json:"last_restocked_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the product is at or below its reorder level.
func (i Inventory) LowStock() bool {
	return i.QuantityInStock <= i.ReorderLevel
}
