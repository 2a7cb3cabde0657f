package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ErrNotFound is returned when no product carries the requested barcode.
var ErrNotFound = common.NewAppError("PRODUCT_NOT_FOUND", "unknown barcode", http.StatusNotFound, nil)

type productLoader interface {
	GetProductByBarcode(ctx context.Context, barcode string) (pricing.Product, error)
	BarcodeForProduct(ctx context.Context, productID string) (string, error)
}

// Service orchestrates product lookups, caching, and cache invalidation.
type Service struct {
	store productLoader
	cache *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store productLoader
	Cache *Cache
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache}, nil
}

// LookupByBarcode returns the product and its rule set for one barcode,
// serving from cache when possible. The returned product is a fresh value on
// every call; callers own it for the duration of one resolution.
func (s *Service) LookupByBarcode(ctx context.Context, barcode string) (pricing.Product, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return pricing.Product{}, common.NewAppError("VALIDATION_ERROR", "barcode is required", http.StatusBadRequest, nil)
	}

	key := cacheKey(code)
	var cached pricing.Product
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		if obs.CatalogCacheTotal != nil {
			obs.CatalogCacheTotal.WithLabelValues("hit").Inc()
		}
		return cached, nil
	}
	if obs.CatalogCacheTotal != nil {
		obs.CatalogCacheTotal.WithLabelValues("miss").Inc()
	}

	product, err := s.store.GetProductByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pricing.Product{}, ErrNotFound
		}
		return pricing.Product{}, fmt.Errorf("catalog: load product %q: %w", code, err)
	}
	if err := s.cache.SetJSON(ctx, key, product); err != nil {
		// lookup already succeeded; a cold cache is the only consequence
		return product, nil
	}
	return product, nil
}

// InvalidateBarcode drops the cached product for one barcode.
func (s *Service) InvalidateBarcode(ctx context.Context, barcode string) error {
	return s.cache.Delete(ctx, cacheKey(strings.TrimSpace(barcode)))
}

// InvalidateProduct drops the cached product addressed by id.
func (s *Service) InvalidateProduct(ctx context.Context, productID string) error {
	barcode, err := s.store.BarcodeForProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.InvalidateBarcode(ctx, barcode)
}

func cacheKey(barcode string) string {
	if barcode == "" {
		return ""
	}
	return "catalog:barcode:" + barcode
}
