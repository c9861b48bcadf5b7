package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_shop/internal/domain"
)

// OrderAPI is what the handler needs from the order service.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, userID, cartID int64, address string) (*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64, statusFilter string, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID int64, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, userID, orderID int64) error
	AddTracking(ctx context.Context, orderID int64, status string, location, notes *string) (*domain.TrackingEntry, error)
	ListTracking(ctx context.Context, userID, orderID int64) ([]*domain.TrackingEntry, error)
}

type OrdersHandler struct {
	orders  OrderAPI
	timeout time.Duration
}

func NewOrdersHandler(orders OrderAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type CreateOrderRequest struct {
	CartID  int64  `json:"cart_id"`
	Address string `json:"address"`
}

// POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.CartID == 0 || req.Address == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "cart_id and address are required")
		return
	}

	order, err := h.orders.PlaceOrder(ctx, userID, req.CartID, req.Address)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	limit, offset := parsePagination(r)
	orders, err := h.orders.ListOrders(ctx, userID, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/v1/orders/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	order, err := h.orders.UpdateStatus(ctx, userID, orderID, req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// DELETE /api/v1/orders/{order_id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(ctx, userID, orderID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AddTrackingRequest struct {
	Status   string  `json:"status"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// POST /api/v1/orders/{order_id}/tracking
func (h *OrdersHandler) AddTracking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	var req AddTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	entry, err := h.orders.AddTracking(ctx, orderID, req.Status, req.Location, req.Notes)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// GET /api/v1/orders/{order_id}/tracking
func (h *OrdersHandler) ListTracking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	entries, err := h.orders.ListTracking(ctx, userID, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.TrackingEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 100
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
