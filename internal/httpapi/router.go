package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the services the router exposes.
type RouterConfig struct {
	Orders         OrderAPI
	Inventory      InventoryAPI
	Catalog        CatalogAPI
	Cart           CartAPI
	RequestTimeout time.Duration
}

// NewRouter assembles the full API surface.
func NewRouter(cfg RouterConfig) chi.Router {
	ordersHandler := NewOrdersHandler(cfg.Orders, cfg.RequestTimeout)
	inventoryHandler := NewInventoryHandler(cfg.Inventory, cfg.RequestTimeout)
	productsHandler := NewProductsHandler(cfg.Catalog, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Cart, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordersHandler.CreateOrder)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Put("/{order_id}/status", ordersHandler.UpdateStatus)
			r.Delete("/{order_id}", ordersHandler.DeleteOrder)
			r.Post("/{order_id}/tracking", ordersHandler.AddTracking)
			r.Get("/{order_id}/tracking", ordersHandler.ListTracking)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", inventoryHandler.Create)
			r.Get("/", inventoryHandler.List)
			r.Get("/{inventory_id}", inventoryHandler.Get)
			r.Put("/{inventory_id}", inventoryHandler.UpdateReorderLevel)
			r.Post("/{inventory_id}/restock", inventoryHandler.Restock)
			r.Get("/products/{product_id}", inventoryHandler.GetByProduct)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productsHandler.Create)
			r.Get("/", productsHandler.List)
			r.Get("/{product_id}", productsHandler.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateItem)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
	})

	return r
}
