package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_shop/internal/domain"
)

// CatalogAPI is what the handler needs from the catalog service.
type CatalogAPI interface {
	Create(ctx context.Context, sku, name, description string, price decimal.Decimal) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

type ProductsHandler struct {
	catalog CatalogAPI
	timeout time.Duration
}

func NewProductsHandler(catalog CatalogAPI, timeout time.Duration) *ProductsHandler {
	return &ProductsHandler{catalog: catalog, timeout: timeout}
}

type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// POST /api/v1/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.SKU == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "sku and name are required")
		return
	}

	product, err := h.catalog.Create(ctx, req.SKU, req.Name, req.Description, req.Price)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// GET /api/v1/products/{product_id}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseIDParam(w, r, "product_id")
	if !ok {
		return
	}

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit, offset := parsePagination(r)
	products, err := h.catalog.List(ctx, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}
