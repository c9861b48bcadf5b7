package service

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
)

// InventoryService fronts the inventory store. All stock movement goes
// through the repository's atomic statements; this layer adds input
// validation and product existence checks.
type InventoryService struct {
	store Store
}

func NewInventoryService(store Store) *InventoryService {
	return &InventoryService{store: store}
}

// Create adds an inventory record for a product that does not have one yet.
func (s *InventoryService) Create(ctx context.Context, productID int64, quantity, reorderLevel int) (*domain.Inventory, error) {
	if quantity < 0 || reorderLevel < 0 {
		return nil, repository.ErrInvalidQuantity
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	inv := &domain.Inventory{
		ProductID:       productID,
		QuantityInStock: quantity,
		ReorderLevel:    reorderLevel,
	}
	if err := s.store.CreateInventory(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InventoryService) Get(ctx context.Context, id int64) (*domain.Inventory, error) {
	return s.store.GetInventory(ctx, id)
}

func (s *InventoryService) GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.GetInventoryByProduct(ctx, productID)
}

func (s *InventoryService) List(ctx context.Context, lowStockOnly bool, limit, offset int) ([]*domain.Inventory, error) {
	return s.store.ListInventories(ctx, lowStockOnly, limit, offset)
}

// Restock adds a positive quantity of stock.
func (s *InventoryService) Restock(ctx context.Context, id int64, quantityToAdd int) (*domain.Inventory, error) {
	return s.store.Restock(ctx, id, quantityToAdd)
}

func (s *InventoryService) UpdateReorderLevel(ctx context.Context, id int64, reorderLevel int) (*domain.Inventory, error) {
	return s.store.UpdateReorderLevel(ctx, id, reorderLevel)
}
