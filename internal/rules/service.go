package rules

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// RuleInput is the write payload for create and update.
type RuleInput struct {
	Category    string `json:"category" validate:"required,oneof=global category product_template product_variant"`
	MinQuantity int    `json:"min_quantity" validate:"min=0"`
	Compute     string `json:"compute" validate:"required,oneof=fixed_price percentage"`
	FixedPrice  *int64 `json:"fixed_price" validate:"omitempty,min=0"`
	PercentBps  *int32 `json:"percent_bps" validate:"omitempty,gt=0,lte=10000"`
	Position    int    `json:"position" validate:"min=0"`
}

type cacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID string) error
}

type ruleStore interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Record, error)
	Insert(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// Service manages the pricing rule catalog for back-office operators.
type Service struct {
	Store    ruleStore
	Catalog  cacheInvalidator
	Validate *validator.Validate
	Logger   zerolog.Logger
}

func (s Service) List(ctx context.Context, productID uuid.UUID) ([]Record, error) {
	return s.Store.ListByProduct(ctx, productID)
}

func (s Service) Create(ctx context.Context, productID uuid.UUID, in RuleInput) (Record, error) {
	if err := s.validateInput(in); err != nil {
		return Record{}, err
	}
	rec := recordFromInput(productID, in)
	if err := s.Store.Insert(ctx, &rec); err != nil {
		return Record{}, err
	}
	s.invalidate(ctx, productID)
	return rec, nil
}

func (s Service) Update(ctx context.Context, id uuid.UUID, in RuleInput) (Record, error) {
	if err := s.validateInput(in); err != nil {
		return Record{}, err
	}
	rec := recordFromInput(uuid.Nil, in)
	rec.ID = id
	if err := s.Store.Update(ctx, &rec); err != nil {
		return Record{}, err
	}
	s.invalidate(ctx, rec.ProductID)
	return rec, nil
}

func (s Service) Delete(ctx context.Context, id uuid.UUID) error {
	productID, err := s.Store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

// validateInput enforces the payload shape the compute mode requires. A
// fixed_price rule carries an amount, a percentage rule carries basis points.
func (s Service) validateInput(in RuleInput) error {
	if err := s.Validate.Struct(in); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "invalid rule payload", http.StatusBadRequest, err)
	}
	switch in.Compute {
	case string(pricing.ComputeFixed):
		if in.FixedPrice == nil {
			return common.NewAppError("VALIDATION_ERROR", "fixed_price is required for fixed_price rules", http.StatusBadRequest, nil)
		}
	case string(pricing.ComputePercentage):
		if in.PercentBps == nil {
			return common.NewAppError("VALIDATION_ERROR", "percent_bps is required for percentage rules", http.StatusBadRequest, nil)
		}
	}
	return nil
}

func (s Service) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.Catalog == nil || productID == uuid.Nil {
		return
	}
	if err := s.Catalog.InvalidateProduct(ctx, productID.String()); err != nil {
		s.Logger.Warn().Err(err).Str("product_id", productID.String()).Msg("cache invalidation failed")
	}
}

func recordFromInput(productID uuid.UUID, in RuleInput) Record {
	rec := Record{
		ProductID:   productID,
		Category:    in.Category,
		MinQuantity: in.MinQuantity,
		Compute:     in.Compute,
		Position:    in.Position,
	}
	switch in.Compute {
	case string(pricing.ComputeFixed):
		rec.FixedPrice = in.FixedPrice
	case string(pricing.ComputePercentage):
		rec.PercentBps = in.PercentBps
	}
	return rec
}
