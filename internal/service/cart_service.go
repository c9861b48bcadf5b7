package service

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
)

// CartService manages the user's single lazily-created cart.
type CartService struct {
	store Store
}

func NewCartService(store Store) *CartService {
	return &CartService{store: store}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.store.GetOrCreateCart(ctx, userID)
}

// AddItem puts quantity of a product into the user's cart, creating the cart
// on first use. The product must exist; stock is not checked here, that
// happens at order placement.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.AddCartItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.store.GetCart(ctx, cart.ID)
}

// UpdateItem sets the quantity of a line already in the user's cart.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateCartItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.store.GetCart(ctx, cart.ID)
}

// RemoveItem drops one product's line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveCartItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.store.GetCart(ctx, cart.ID)
}
