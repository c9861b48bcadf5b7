package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/repository"
)

// OrderService coordinates order placement and owns the order lifecycle API.
// Placement validates the cart, snapshots its line items with current catalog
// prices, and hands the reservation + insert + cart-clear sequence to the
// store as one transaction. Until that commit, nothing this service does is
// visible to anyone else.
type OrderService struct {
	store     Store
	publisher events.Publisher
}

// NewOrderService builds the service. publisher may be nil when eventing is
// not configured.
func NewOrderService(store Store, publisher events.Publisher) *OrderService {
	return &OrderService{store: store, publisher: publisher}
}

// PlaceOrder creates an order from the user's cart.
//
// Failure modes: repository.ErrCartNotFound, ErrForbidden, ErrEmptyCart,
// repository.ErrProductNotFound, *repository.InsufficientStockError,
// repository.ErrStockContention. Any failure leaves inventory, cart and
// orders exactly as they were.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, cartID int64, address string) (*domain.Order, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, ErrForbidden
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Snapshot: resolve every product and freeze its price now. Totals are
	// fixed-point decimal; no floats anywhere near money.
	items := make([]domain.OrderItem, 0, len(cart.Items))
	lines := make([]repository.ReservationLine, 0, len(cart.Items))
	total := decimal.Zero
	for _, ci := range cart.Items {
		product, err := s.store.GetProduct(ctx, ci.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve cart product %d: %w", ci.ProductID, err)
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    ci.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
		lines = append(lines, repository.ReservationLine{ProductID: ci.ProductID, Quantity: ci.Quantity})
		total = total.Add(subtotal)
	}

	order := &domain.Order{
		Reference:   uuid.New(),
		UserID:      userID,
		CartID:      &cartID,
		Address:     address,
		Status:      domain.OrderStatusPending,
		TotalAmount: total,
		Items:       items,
	}

	if err := s.store.PlaceOrder(ctx, order, lines); err != nil {
		return nil, err
	}

	s.publishPlaced(ctx, order)
	return order, nil
}

// publishPlaced emits the order.placed event after commit. Best effort: the
// order already exists, so a broker failure is logged and swallowed.
func (s *OrderService) publishPlaced(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := events.NewOrderPlacedEvent(order)
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		log.Error().Err(err).
			Str("orderReference", order.Reference.String()).
			Msg("failed to publish order.placed event")
		return
	}
	log.Info().Str("orderReference", order.Reference.String()).Msg("published order.placed event")
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64, statusFilter string, limit, offset int) ([]*domain.Order, error) {
	var status *domain.OrderStatus
	if statusFilter != "" {
		parsed, err := domain.ParseOrderStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}
	return s.store.ListOrders(ctx, userID, status, limit, offset)
}

// UpdateStatus validates the requested status string and ownership, then
// lets the ledger enforce the transition.
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID int64, statusStr string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(statusStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.store.UpdateOrderStatus(ctx, orderID, next)
}

func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID int64) error {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return err
	}
	return s.store.DeleteOrder(ctx, orderID)
}

func (s *OrderService) AddTracking(ctx context.Context, orderID int64, status string, location, notes *string) (*domain.TrackingEntry, error) {
	if _, err := domain.ParseOrderStatus(status); err != nil {
		return nil, err
	}
	return s.store.AddTracking(ctx, orderID, status, location, notes)
}

func (s *OrderService) ListTracking(ctx context.Context, userID, orderID int64) ([]*domain.TrackingEntry, error) {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.store.ListTracking(ctx, orderID)
}
