package rules

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-kasir/internal/common"
)

var (
	ErrRuleNotFound = common.NewAppError("RULE_NOT_FOUND", "pricing rule not found", http.StatusNotFound, nil)
	ErrRuleConflict = common.NewAppError("RULE_CONFLICT", "a rule with the same tier and threshold already exists", http.StatusConflict, nil)
)

// Record is a pricing rule row as stored.
type Record struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Category    string    `json:"category"`
	MinQuantity int       `json:"min_quantity"`
	Compute     string    `json:"compute"`
	FixedPrice  *int64    `json:"fixed_price,omitempty"`
	PercentBps  *int32    `json:"percent_bps,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists pricing rules.
type Store struct {
	DB DB
}

const listRulesSQL = `
SELECT id, product_id, category, min_quantity, compute, fixed_price, percent_bps, position, created_at
FROM pricing_rules
WHERE product_id = $1
ORDER BY category, position, created_at
`

func (s Store) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Record, error) {
	rows, err := s.DB.Query(ctx, listRulesSQL, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Category, &r.MinQuantity, &r.Compute,
			&r.FixedPrice, &r.PercentBps, &r.Position, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const insertRuleSQL = `
INSERT INTO pricing_rules (id, product_id, category, min_quantity, compute, fixed_price, percent_bps, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at
`

func (s Store) Insert(ctx context.Context, r *Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	err := s.DB.QueryRow(ctx, insertRuleSQL,
		r.ID, r.ProductID, r.Category, r.MinQuantity, r.Compute, r.FixedPrice, r.PercentBps, r.Position,
	).Scan(&r.CreatedAt)
	return translateError(err)
}

const updateRuleSQL = `
UPDATE pricing_rules
SET category = $2, min_quantity = $3, compute = $4, fixed_price = $5, percent_bps = $6, position = $7
WHERE id = $1
RETURNING product_id, created_at
`

func (s Store) Update(ctx context.Context, r *Record) error {
	err := s.DB.QueryRow(ctx, updateRuleSQL,
		r.ID, r.Category, r.MinQuantity, r.Compute, r.FixedPrice, r.PercentBps, r.Position,
	).Scan(&r.ProductID, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRuleNotFound
	}
	return translateError(err)
}

const deleteRuleSQL = `
DELETE FROM pricing_rules
WHERE id = $1
RETURNING product_id
`

// Delete removes a rule and reports which product owned it so callers can
// invalidate the right cache entry.
func (s Store) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var productID uuid.UUID
	err := s.DB.QueryRow(ctx, deleteRuleSQL, id).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrRuleNotFound
	}
	return productID, err
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrRuleConflict
		case "23503":
			return common.NewAppError("PRODUCT_NOT_FOUND", "unknown product", http.StatusNotFound, err)
		}
	}
	return err
}
