package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownStatus rejects status strings outside the enumeration.
	ErrUnknownStatus = errors.New("unknown order status")

	// ErrInvalidTransition rejects lifecycle moves the status machine forbids.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus rejects anything outside the enumerated statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// CanTransitionTo reports whether moving from s to next is a valid lifecycle
// step. Delivered and cancelled orders accept no further transitions.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Protected reports whether the order refuses deletion and cancellation.
func (s OrderStatus) Protected() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem freezes a cart line at placement time: the unit price is the
// catalog price read when the order was created, never re-read afterwards.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Order is immutable after creation except for its status. CartID is nullable
// because the originating cart may be deleted independently later.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	Reference   uuid.UUID       `db:"reference" json:"reference"`
	UserID      int64           `db:"user_id" json:"user_id"`
	CartID      *int64          `db:"cart_id" json:"cart_id,omitempty"`
	Address     string          `db:"address" json:"address"`
	Status      OrderStatus     `db:"order_status" json:"order_status"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Items       []OrderItem     `json:"items"`
	OrderDate   time.Time       `db:"order_date" json:"order_date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// TrackingEntry is one record of the append-only per-order tracking log.
type TrackingEntry struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
