package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

// InventoryAPI is what the handler needs from the inventory service.
type InventoryAPI interface {
	Create(ctx context.Context, productID int64, quantity, reorderLevel int) (*domain.Inventory, error)
	Get(ctx context.Context, id int64) (*domain.Inventory, error)
	GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error)
	List(ctx context.Context, lowStockOnly bool, limit, offset int) ([]*domain.Inventory, error)
	Restock(ctx context.Context, id int64, quantityToAdd int) (*domain.Inventory, error)
	UpdateReorderLevel(ctx context.Context, id int64, reorderLevel int) (*domain.Inventory, error)
}

type InventoryHandler struct {
	inventory InventoryAPI
	timeout   time.Duration
}

func NewInventoryHandler(inventory InventoryAPI, timeout time.Duration) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, timeout: timeout}
}

type CreateInventoryRequest struct {
	ProductID       int64 `json:"product_id"`
	QuantityInStock int   `json:"quantity_in_stock"`
	ReorderLevel    int   `json:"reorder_level"`
}

// POST /api/v1/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "invalid_body", "product_id is required")
		return
	}

	inv, err := h.inventory.Create(ctx, req.ProductID, req.QuantityInStock, req.ReorderLevel)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lowStockOnly := r.URL.Query().Get("low_stock_only") == "true"
	limit, offset := parsePagination(r)

	inventories, err := h.inventory.List(ctx, lowStockOnly, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if inventories == nil {
		inventories = []*domain.Inventory{}
	}
	respondJSON(w, http.StatusOK, inventories)
}

// GET /api/v1/inventory/{inventory_id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseIDParam(w, r, "inventory_id")
	if !ok {
		return
	}

	inv, err := h.inventory.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// GET /api/v1/inventory/products/{product_id}
func (h *InventoryHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := parseIDParam(w, r, "product_id")
	if !ok {
		return
	}

	inv, err := h.inventory.GetByProduct(ctx, productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

type RestockRequest struct {
	QuantityToAdd int `json:"quantity_to_add"`
}

// POST /api/v1/inventory/{inventory_id}/restock
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseIDParam(w, r, "inventory_id")
	if !ok {
		return
	}

	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	inv, err := h.inventory.Restock(ctx, id, req.QuantityToAdd)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

type UpdateReorderLevelRequest struct {
	ReorderLevel int `json:"reorder_level"`
}

// PUT /api/v1/inventory/{inventory_id}
func (h *InventoryHandler) UpdateReorderLevel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseIDParam(w, r, "inventory_id")
	if !ok {
		return
	}

	var req UpdateReorderLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	inv, err := h.inventory.UpdateReorderLevel(ctx, id, req.ReorderLevel)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}
