package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
)

// CatalogService serves product reads through a cache. Cache failures are
// logged and fall back to the store; the catalog is never down because Redis
// is.
type CatalogService struct {
	store Store
	cache cache.ProductCache
}

// NewCatalogService builds the service. productCache may be nil to disable
// caching.
func NewCatalogService(store Store, productCache cache.ProductCache) *CatalogService {
	return &CatalogService{store: store, cache: productCache}
}

func (s *CatalogService) Create(ctx context.Context, sku, name, description string, price decimal.Decimal) (*domain.Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	p := &domain.Product{SKU: sku, Name: name, Description: description, Price: price}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, p)
	return p, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Int64("productId", id).Msg("product cache read failed")
		}
	}

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, p)
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return s.store.ListProducts(ctx, limit, offset)
}

func (s *CatalogService) cacheSet(ctx context.Context, p *domain.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, p); err != nil {
		log.Warn().Err(err).Int64("productId", p.ID).Msg("product cache write failed")
	}
}
