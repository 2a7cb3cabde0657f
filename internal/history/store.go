package history

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Entry is one recorded lookup in a device's history.
type Entry struct {
	Barcode   string        `json:"barcode"`
	Name      string        `json:"name,omitempty"`
	Quantity  int           `json:"quantity"`
	UnitPrice pricing.Money `json:"unit_price"`
	At        time.Time     `json:"at"`
}

// Store keeps a capped per-device lookup history in Redis so any terminal
// can reconnect and see its recent lookups.
type Store struct {
	R   *redis.Client
	Max int
	TTL time.Duration
}

func (s *Store) key(device string) string {
	return "history:device:" + device
}

func (s *Store) cap() int {
	if s == nil || s.Max <= 0 {
		return 50
	}
	return s.Max
}

// Record prepends an entry to the device's history and trims it to the cap.
func (s *Store) Record(ctx context.Context, device string, e Entry) error {
	if s == nil || s.R == nil {
		return errors.New("history: redis client not configured")
	}
	device = strings.TrimSpace(device)
	if device == "" {
		return errors.New("history: device is required")
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := s.key(device)
	pipe := s.R.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(s.cap()-1))
	if s.TTL > 0 {
		pipe.Expire(ctx, key, s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if obs.HistoryWritesTotal != nil {
		obs.HistoryWritesTotal.Inc()
	}
	return nil
}

// List returns up to limit most-recent entries for the device.
func (s *Store) List(ctx context.Context, device string, limit int) ([]Entry, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("history: redis client not configured")
	}
	if limit <= 0 || limit > s.cap() {
		limit = s.cap()
	}
	raws, err := s.R.LRange(ctx, s.key(strings.TrimSpace(device)), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear removes the device's history entirely.
func (s *Store) Clear(ctx context.Context, device string) error {
	if s == nil || s.R == nil {
		return errors.New("history: redis client not configured")
	}
	return s.R.Del(ctx, s.key(strings.TrimSpace(device))).Err()
}

// Recorder adapts the store to the lookup event bus. Events without a device
// are skipped; only resolved lookups enter a device's history.
type Recorder struct {
	Store *Store
}

// Notify implements events.Notifier.
func (r Recorder) Notify(ctx context.Context, ev events.LookupEvent) error {
	if r.Store == nil || strings.TrimSpace(ev.Device) == "" || ev.Topic != events.TopicLookupResolved {
		return nil
	}
	return r.Store.Record(ctx, ev.Device, Entry{
		Barcode:   ev.Barcode,
		Name:      ev.ProductName,
		Quantity:  ev.Quantity,
		UnitPrice: ev.UnitPrice,
		At:        ev.OccurredAt,
	})
}
