package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// DB is the subset of pgxpool.Pool the catalog store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store loads products and their pricing rules from Postgres.
type Store struct {
	DB DB
}

const getProductByBarcodeSQL = `
SELECT id, barcode, name, base_price
FROM products
WHERE barcode = $1`

const listRulesByProductSQL = `
SELECT id, category, min_quantity, compute, COALESCE(fixed_price, 0), COALESCE(percent_bps, 0)
FROM pricing_rules
WHERE product_id = $1
ORDER BY category, position, created_at`

// GetProductByBarcode loads a product with its rules grouped by tier.
// Rules keep their stored position order inside each tier.
func (s Store) GetProductByBarcode(ctx context.Context, barcode string) (pricing.Product, error) {
	if s.DB == nil {
		return pricing.Product{}, errors.New("catalog: store not configured")
	}
	var p pricing.Product
	row := s.DB.QueryRow(ctx, getProductByBarcodeSQL, barcode)
	if err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.BasePrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Product{}, ErrNotFound
		}
		return pricing.Product{}, err
	}

	rows, err := s.DB.Query(ctx, listRulesByProductSQL, p.ID)
	if err != nil {
		return pricing.Product{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var r pricing.Rule
		var category string
		if err := rows.Scan(&r.ID, &category, &r.MinQuantity, &r.Compute, &r.FixedPrice, &r.PercentBps); err != nil {
			return pricing.Product{}, err
		}
		r.Category = pricing.Category(category)
		if !r.Category.Valid() {
			continue
		}
		p.Rules.Append(r)
	}
	if err := rows.Err(); err != nil {
		return pricing.Product{}, err
	}
	return p, nil
}

const getBarcodeByProductSQL = `
SELECT barcode FROM products WHERE id = $1`

// BarcodeForProduct resolves a product id to its barcode, used for cache
// invalidation after rule writes.
func (s Store) BarcodeForProduct(ctx context.Context, productID string) (string, error) {
	if s.DB == nil {
		return "", errors.New("catalog: store not configured")
	}
	var barcode string
	if err := s.DB.QueryRow(ctx, getBarcodeByProductSQL, productID).Scan(&barcode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return barcode, nil
}
