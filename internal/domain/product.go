package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is catalog identity only. Stock is tracked in the inventory table;
// products carry no quantity counter.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
