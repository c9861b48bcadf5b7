package service

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
)

// Store is the persistence surface the services need. *repository.Repository
// satisfies it; tests substitute struct mocks.
type Store interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error)

	GetOrCreateCart(ctx context.Context, userID int64) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID int64) (*domain.Cart, error)
	AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, cartID, productID int64, quantity int) (*domain.CartItem, error)
	RemoveCartItem(ctx context.Context, cartID, productID int64) error

	CreateInventory(ctx context.Context, inv *domain.Inventory) error
	GetInventory(ctx context.Context, id int64) (*domain.Inventory, error)
	GetInventoryByProduct(ctx context.Context, productID int64) (*domain.Inventory, error)
	ListInventories(ctx context.Context, lowStockOnly bool, limit, offset int) ([]*domain.Inventory, error)
	UpdateReorderLevel(ctx context.Context, id int64, reorderLevel int) (*domain.Inventory, error)
	Restock(ctx context.Context, id int64, quantityToAdd int) (*domain.Inventory, error)

	PlaceOrder(ctx context.Context, order *domain.Order, lines []repository.ReservationLine) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	AddTracking(ctx context.Context, orderID int64, status string, location, notes *string) (*domain.TrackingEntry, error)
	ListTracking(ctx context.Context, orderID int64) ([]*domain.TrackingEntry, error)
}
