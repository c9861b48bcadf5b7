package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

// CartAPI is what the handler needs from the cart service.
type CartAPI interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*domain.Cart, error)
}

type CartHandler struct {
	cart    CartAPI
	timeout time.Duration
}

func NewCartHandler(cart CartAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{cart: cart, timeout: timeout}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.cart.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "invalid_body", "product_id is required")
		return
	}

	cart, err := h.cart.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	productID, ok := parseIDParam(w, r, "product_id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	cart, err := h.cart.UpdateItem(ctx, userID, productID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	productID, ok := parseIDParam(w, r, "product_id")
	if !ok {
		return
	}

	cart, err := h.cart.RemoveItem(ctx, userID, productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}
