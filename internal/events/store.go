package events

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the event store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore persists lookup events to the lookup_events audit table.
type PGStore struct {
	DB DB
}

const insertLookupEventSQL = `
INSERT INTO lookup_events
  (topic, barcode, product_id, product_name, quantity, unit_price, applied_rule_id, applied_category, device, occurred_at)
VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, ''), $5, $6, NULLIF($7, '')::uuid, NULLIF($8, ''), NULLIF($9, ''), $10)`

// InsertLookupEvent appends one audit row.
func (s PGStore) InsertLookupEvent(ctx context.Context, ev LookupEvent) error {
	if s.DB == nil {
		return errors.New("events: db not configured")
	}
	_, err := s.DB.Exec(ctx, insertLookupEventSQL,
		ev.Topic,
		ev.Barcode,
		ev.ProductID,
		ev.ProductName,
		ev.Quantity,
		ev.UnitPrice,
		ev.AppliedRuleID,
		ev.AppliedCategory,
		ev.Device,
		ev.OccurredAt,
	)
	return err
}
