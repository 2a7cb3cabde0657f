package quote

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ProductSummary is the product subset echoed back with a quote.
type ProductSummary struct {
	ID        string        `json:"id"`
	Barcode   string        `json:"barcode"`
	Name      string        `json:"name"`
	BasePrice pricing.Money `json:"base_price"`
}

// Quote is the priced outcome of one barcode lookup. AppliedRule is nil when
// the base price fell through, never an error.
type Quote struct {
	Product     ProductSummary `json:"product"`
	Quantity    int            `json:"quantity"`
	UnitPrice   pricing.Money  `json:"unit_price"`
	TotalPrice  pricing.Money  `json:"total_price"`
	AppliedRule *pricing.Rule  `json:"applied_rule"`
}

// Service runs the fetch-then-resolve sequence: catalog lookup, best-price
// resolution, audit event emission.
type Service struct {
	Catalog *catalog.Service
	Events  *events.Bus
	Logger  zerolog.Logger
	MaxQty  int
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) maxQty() int {
	if s == nil || s.MaxQty <= 0 {
		return 9999
	}
	return s.MaxQty
}

// Quote looks up the product behind barcode and resolves the best unit price
// for qty. The quantity is clamped to [1, MaxQty] before resolution, so the
// resolver itself never sees a degenerate quantity. The device tag, when
// present, routes the lookup into that device's history via the event bus.
func (s *Service) Quote(ctx context.Context, barcode string, qty int, device string) (Quote, error) {
	if s == nil || s.Catalog == nil {
		return Quote{}, errors.New("quote: catalog service not configured")
	}
	qty = common.ClampInt(qty, 1, s.maxQty())

	product, err := s.Catalog.LookupByBarcode(ctx, barcode)
	if err != nil {
		s.observeLookup(ctx, barcode, qty, device, err)
		return Quote{}, err
	}

	res := pricing.Resolve(product, qty)
	q := Quote{
		Product: ProductSummary{
			ID:        product.ID,
			Barcode:   product.Barcode,
			Name:      product.Name,
			BasePrice: product.BasePrice,
		},
		Quantity:    qty,
		UnitPrice:   res.UnitPrice,
		TotalPrice:  res.UnitPrice * pricing.Money(qty),
		AppliedRule: res.Applied,
	}

	if obs.LookupTotal != nil {
		obs.LookupTotal.WithLabelValues("resolved").Inc()
	}
	if obs.RuleMatchTotal != nil {
		obs.RuleMatchTotal.WithLabelValues(matchTier(res.Applied)).Inc()
	}
	s.emit(ctx, product, q, device)
	return q, nil
}

func (s *Service) emit(ctx context.Context, product pricing.Product, q Quote, device string) {
	if s.Events == nil {
		return
	}
	ev := events.LookupEvent{
		Topic:       events.TopicLookupResolved,
		Barcode:     product.Barcode,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    q.Quantity,
		UnitPrice:   q.UnitPrice,
		Device:      device,
		OccurredAt:  s.now(),
	}
	if q.AppliedRule != nil {
		ev.AppliedRuleID = q.AppliedRule.ID
		ev.AppliedCategory = string(q.AppliedRule.Category)
	}
	if err := s.Events.Emit(ctx, ev); err != nil {
		s.Logger.Error().Err(err).Str("barcode", product.Barcode).Msg("emit lookup event")
	}
}

func (s *Service) observeLookup(ctx context.Context, barcode string, qty int, device string, lookupErr error) {
	result := "error"
	topic := ""
	if errors.Is(lookupErr, catalog.ErrNotFound) {
		result = "not_found"
		topic = events.TopicLookupMissed
	}
	if obs.LookupTotal != nil {
		obs.LookupTotal.WithLabelValues(result).Inc()
	}
	if topic == "" || s.Events == nil {
		return
	}
	ev := events.LookupEvent{
		Topic:      topic,
		Barcode:    barcode,
		Quantity:   qty,
		Device:     device,
		OccurredAt: s.now(),
	}
	if err := s.Events.Emit(ctx, ev); err != nil {
		s.Logger.Error().Err(err).Str("barcode", barcode).Msg("emit lookup miss event")
	}
}

func matchTier(applied *pricing.Rule) string {
	if applied == nil {
		return "base_price"
	}
	return string(applied.Category)
}
