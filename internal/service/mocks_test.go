package service

import (
	"context"
	"sync"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/repository"
)

// mockStore is an in-memory Store. Setting err makes every call fail with it;
// placeOrderErr fails only PlaceOrder.
type mockStore struct {
	m sync.Mutex

	products    map[int64]*domain.Product
	carts       map[int64]*domain.Cart
	inventories map[int64]*domain.Inventory
	orders      map[int64]*domain.Order
	tracking    map[int64][]*domain.TrackingEntry
	nextID      int64

	err           error
	placeOrderErr error

	placedLines []repository.ReservationLine
}

func newMockStore() *mockStore {
	return &mockStore{
		products:    make(map[int64]*domain.Product),
		carts:       make(map[int64]*domain.Cart),
		inventories: make(map[int64]*domain.Inventory),
		orders:      make(map[int64]*domain.Order),
		tracking:    make(map[int64][]*domain.TrackingEntry),
	}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) addProduct(p *domain.Product) *domain.Product {
	m.m.Lock()
	defer m.m.Unlock()
	if p.ID == 0 {
		p.ID = m.id()
	}
	m.products[p.ID] = p
	return p
}

func (m *mockStore) addCart(userID int64, items ...domain.CartItem) *domain.Cart {
	m.m.Lock()
	defer m.m.Unlock()
	cart := &domain.Cart{ID: m.id(), UserID: userID, Items: items}
	m.carts[cart.ID] = cart
	return cart
}

func (m *mockStore) addOrder(o *domain.Order) *domain.Order {
	m.m.Lock()
	defer m.m.Unlock()
	if o.ID == 0 {
		o.ID = m.id()
	}
	m.orders[o.ID] = o
	return o
}

func (m *mockStore) CreateProduct(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	p.ID = m.id()
	m.products[p.ID] = p
	return nil
}

func (m *mockStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockStore) ListProducts(context.Context, int, int) ([]*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockStore) GetOrCreateCart(_ context.Context, userID int64) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	cart := &domain.Cart{ID: m.id(), UserID: userID}
	m.carts[cart.ID] = cart
	return cart, nil
}

func (m *mockStore) GetCart(_ context.Context, cartID int64) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[cartID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return c, nil
}

func (m *mockStore) AddCartItem(_ context.Context, cartID, productID int64, quantity int) (*domain.CartItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			return &cart.Items[i], nil
		}
	}
	item := domain.CartItem{ID: m.id(), CartID: cartID, ProductID: productID, Quantity: quantity}
	cart.Items = append(cart.Items, item)
	return &cart.Items[len(cart.Items)-1], nil
}

func (m *mockStore) UpdateCartItem(_ context.Context, cartID, productID int64, quantity int) (*domain.CartItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return &cart.Items[i], nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *mockStore) RemoveCartItem(_ context.Context, cartID, productID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cart, ok := m.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockStore) CreateInventory(_ context.Context, inv *domain.Inventory) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.inventories {
		if existing.ProductID == inv.ProductID {
			return repository.ErrInventoryExists
		}
	}
	inv.ID = m.id()
	m.inventories[inv.ID] = inv
	return nil
}

func (m *mockStore) GetInventory(_ context.Context, id int64) (*domain.Inventory, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	inv, ok := m.inventories[id]
	if !ok {
		return nil, repository.ErrInventoryNotFound
	}
	return inv, nil
}

func (m *mockStore) GetInventoryByProduct(_ context.Context, productID int64) (*domain.Inventory, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, inv := range m.inventories {
		if inv.ProductID == productID {
			return inv, nil
		}
	}
	return nil, repository.ErrInventoryNotFound
}

func (m *mockStore) ListInventories(_ context.Context, lowStockOnly bool, _, _ int) ([]*domain.Inventory, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Inventory, 0, len(m.inventories))
	for _, inv := range m.inventories {
		if lowStockOnly && !inv.LowStock() {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (m *mockStore) UpdateReorderLevel(_ context.Context, id int64, reorderLevel int) (*domain.Inventory, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	inv, ok := m.inventories[id]
	if !ok {
		return nil, repository.ErrInventoryNotFound
	}
	inv.ReorderLevel = reorderLevel
	return inv, nil
}

func (m *mockStore) Restock(_ context.Context, id int64, quantityToAdd int) (*domain.Inventory, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if quantityToAdd < 1 {
		return nil, repository.ErrInvalidQuantity
	}
	inv, ok := m.inventories[id]
	if !ok {
		return nil, repository.ErrInventoryNotFound
	}
	inv.QuantityInStock += quantityToAdd
	return inv, nil
}

func (m *mockStore) PlaceOrder(_ context.Context, order *domain.Order, lines []repository.ReservationLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.placeOrderErr != nil {
		return m.placeOrderErr
	}
	order.ID = m.id()
	m.orders[order.ID] = order
	m.placedLines = lines
	if order.CartID != nil {
		if cart, ok := m.carts[*order.CartID]; ok {
			cart.Items = nil
		}
	}
	return nil
}

func (m *mockStore) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockStore) ListOrders(_ context.Context, userID int64, status *domain.OrderStatus, _, _ int) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Order, 0)
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockStore) UpdateOrderStatus(_ context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}
	o.Status = next
	return o, nil
}

func (m *mockStore) DeleteOrder(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status.Protected() {
		return repository.ErrOrderProtected
	}
	delete(m.orders, id)
	return nil
}

func (m *mockStore) AddTracking(_ context.Context, orderID int64, status string, location, notes *string) (*domain.TrackingEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.orders[orderID]; !ok {
		return nil, repository.ErrOrderNotFound
	}
	entry := &domain.TrackingEntry{
		ID:       m.id(),
		OrderID:  orderID,
		Status:   status,
		Location: location,
		Notes:    notes,
	}
	m.tracking[orderID] = append(m.tracking[orderID], entry)
	return entry, nil
}

func (m *mockStore) ListTracking(_ context.Context, orderID int64) ([]*domain.TrackingEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.tracking[orderID], nil
}

type mockPublisher struct {
	m      sync.Mutex
	events []*events.OrderPlacedEvent
	err    error
}

func (p *mockPublisher) PublishOrderPlaced(_ context.Context, event *events.OrderPlacedEvent) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) published() []*events.OrderPlacedEvent {
	p.m.Lock()
	defer p.m.Unlock()
	return p.events
}
