package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

type fakeLoader struct {
	products map[string]pricing.Product
}

func (f fakeLoader) GetProductByBarcode(ctx context.Context, barcode string) (pricing.Product, error) {
	p, ok := f.products[barcode]
	if !ok {
		return pricing.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f fakeLoader) BarcodeForProduct(ctx context.Context, productID string) (string, error) {
	for _, p := range f.products {
		if p.ID == productID {
			return p.Barcode, nil
		}
	}
	return "", catalog.ErrNotFound
}

type memEventStore struct {
	events []events.LookupEvent
}

func (m *memEventStore) InsertLookupEvent(ctx context.Context, ev events.LookupEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func testProduct() pricing.Product {
	p := pricing.Product{
		ID:        "9be2a571-27cd-4f11-a264-3b5dd9a8be61",
		Barcode:   "4006381333931",
		Name:      "Stabilo Boss Original",
		BasePrice: 1000,
	}
	p.Rules.Append(pricing.Rule{
		ID:          "d88a4a6c-5ccf-47a9-9f43-1a2a30b3f1f4",
		Category:    pricing.CategoryGlobal,
		MinQuantity: 5,
		Compute:     pricing.ComputeFixed,
		FixedPrice:  800,
	})
	return p
}

func newQuoteService(t *testing.T, store *memEventStore) *Service {
	t.Helper()
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store: fakeLoader{products: map[string]pricing.Product{"4006381333931": testProduct()}},
	})
	require.NoError(t, err)
	return &Service{
		Catalog: catalogSvc,
		Events:  &events.Bus{Store: store},
		Logger:  zerolog.Nop(),
		MaxQty:  100,
	}
}

func TestQuoteResolvesRulePrice(t *testing.T) {
	store := &memEventStore{}
	svc := newQuoteService(t, store)

	q, err := svc.Quote(context.Background(), "4006381333931", 6, "till-1")
	require.NoError(t, err)
	require.EqualValues(t, 800, q.UnitPrice)
	require.EqualValues(t, 4800, q.TotalPrice)
	require.NotNil(t, q.AppliedRule)

	require.Len(t, store.events, 1)
	ev := store.events[0]
	require.Equal(t, events.TopicLookupResolved, ev.Topic)
	require.Equal(t, "till-1", ev.Device)
	require.Equal(t, "d88a4a6c-5ccf-47a9-9f43-1a2a30b3f1f4", ev.AppliedRuleID)
}

func TestQuoteFallsBackToBasePrice(t *testing.T) {
	store := &memEventStore{}
	svc := newQuoteService(t, store)

	q, err := svc.Quote(context.Background(), "4006381333931", 2, "")
	require.NoError(t, err)
	require.EqualValues(t, 1000, q.UnitPrice)
	require.Nil(t, q.AppliedRule)
}

func TestQuoteClampsQuantity(t *testing.T) {
	svc := newQuoteService(t, &memEventStore{})

	q, err := svc.Quote(context.Background(), "4006381333931", 0, "")
	require.NoError(t, err)
	require.Equal(t, 1, q.Quantity)

	q, err = svc.Quote(context.Background(), "4006381333931", 1000, "")
	require.NoError(t, err)
	require.Equal(t, 100, q.Quantity)
}

func TestQuoteUnknownBarcodeEmitsMiss(t *testing.T) {
	store := &memEventStore{}
	svc := newQuoteService(t, store)

	_, err := svc.Quote(context.Background(), "0000000000000", 1, "till-2")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicLookupMissed, store.events[0].Topic)
	require.Equal(t, "till-2", store.events[0].Device)
}

func newPriceRouter(svc *Service, maxQty int) http.Handler {
	h := &Handler{Svc: svc, MaxQty: maxQty}
	r := chi.NewRouter()
	r.Get("/api/v1/products/{barcode}/price", h.Price)
	return r
}

func TestPriceHandler(t *testing.T) {
	svc := newQuoteService(t, &memEventStore{})
	router := newPriceRouter(svc, 100)

	do := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("quotes known barcode", func(t *testing.T) {
		rec := do("/api/v1/products/4006381333931/price?qty=6")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"unit_price":800`)
	})

	t.Run("defaults qty to one", func(t *testing.T) {
		rec := do("/api/v1/products/4006381333931/price")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"quantity":1`)
	})

	t.Run("rejects non numeric qty", func(t *testing.T) {
		rec := do("/api/v1/products/4006381333931/price?qty=abc")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects qty above cap", func(t *testing.T) {
		rec := do("/api/v1/products/4006381333931/price?qty=101")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown barcode is 404", func(t *testing.T) {
		rec := do("/api/v1/products/0000000000000/price")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
