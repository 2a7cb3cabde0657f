package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

type countingLoader struct {
	product pricing.Product
	calls   int
}

func (c *countingLoader) GetProductByBarcode(ctx context.Context, barcode string) (pricing.Product, error) {
	c.calls++
	if barcode != c.product.Barcode {
		return pricing.Product{}, ErrNotFound
	}
	return c.product, nil
}

func (c *countingLoader) BarcodeForProduct(ctx context.Context, productID string) (string, error) {
	if productID != c.product.ID {
		return "", ErrNotFound
	}
	return c.product.Barcode, nil
}

func testProduct() pricing.Product {
	p := pricing.Product{
		ID:        "0c7a2a26-0f1e-4f57-8f54-7f6ac1a0f6de",
		Barcode:   "8998866200318",
		Name:      "Indomie Goreng",
		BasePrice: 350000,
	}
	p.Rules.Append(pricing.Rule{
		ID:          "rule-1",
		Category:    pricing.CategoryGlobal,
		MinQuantity: 10,
		Compute:     pricing.ComputePercentage,
		PercentBps:  500,
	})
	return p
}

func newCachedService(t *testing.T) (*Service, *countingLoader) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	loader := &countingLoader{product: testProduct()}
	svc, err := NewService(ServiceConfig{
		Store: loader,
		Cache: NewCache(client, time.Minute),
	})
	require.NoError(t, err)
	return svc, loader
}

func TestLookupByBarcodeCachesProduct(t *testing.T) {
	svc, loader := newCachedService(t)
	ctx := context.Background()

	first, err := svc.LookupByBarcode(ctx, "8998866200318")
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls)

	second, err := svc.LookupByBarcode(ctx, "8998866200318")
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls, "second lookup should hit the cache")
	require.Equal(t, first, second)
	require.Equal(t, 1, second.Rules.Len())
}

func TestLookupByBarcodeUnknown(t *testing.T) {
	svc, _ := newCachedService(t)
	_, err := svc.LookupByBarcode(context.Background(), "404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookupByBarcodeRejectsEmpty(t *testing.T) {
	svc, _ := newCachedService(t)
	_, err := svc.LookupByBarcode(context.Background(), "   ")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestInvalidateProductDropsCache(t *testing.T) {
	svc, loader := newCachedService(t)
	ctx := context.Background()

	_, err := svc.LookupByBarcode(ctx, "8998866200318")
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateProduct(ctx, loader.product.ID))

	_, err = svc.LookupByBarcode(ctx, "8998866200318")
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls, "invalidation should force a reload")
}

func TestLookupWithoutCache(t *testing.T) {
	loader := &countingLoader{product: testProduct()}
	svc, err := NewService(ServiceConfig{Store: loader})
	require.NoError(t, err)

	_, err = svc.LookupByBarcode(context.Background(), "8998866200318")
	require.NoError(t, err)
	_, err = svc.LookupByBarcode(context.Background(), "8998866200318")
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}
