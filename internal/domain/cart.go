package domain

import "time"

// Cart is created lazily, one per user. Its items are removed (the cart row
// stays) when an order is placed from it.
type Cart struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastModified time.Time  `db:"last_modified" json:"last_modified"`
	Items        []CartItem `json:"items"`
}

type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	CartID    int64     `db:"cart_id" json:"cart_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
