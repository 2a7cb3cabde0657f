package history

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/events"
)

func newTestStore(t *testing.T, max int) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Store{R: client, Max: max, TTL: time.Hour}
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "till-1", Entry{Barcode: "111", Name: "first", Quantity: 1, UnitPrice: 100}))
	require.NoError(t, store.Record(ctx, "till-1", Entry{Barcode: "222", Name: "second", Quantity: 2, UnitPrice: 200}))

	entries, err := store.List(ctx, "till-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "222", entries[0].Barcode, "newest entry first")
	require.Equal(t, "111", entries[1].Barcode)
}

func TestRecordTrimsToCap(t *testing.T) {
	store := newTestStore(t, 3)
	ctx := context.Background()

	for _, code := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, store.Record(ctx, "till-1", Entry{Barcode: code}))
	}

	entries, err := store.List(ctx, "till-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "5", entries[0].Barcode)
	require.Equal(t, "3", entries[2].Barcode)
}

func TestListIsPerDevice(t *testing.T) {
	store := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "till-1", Entry{Barcode: "111"}))
	require.NoError(t, store.Record(ctx, "till-2", Entry{Barcode: "222"}))

	entries, err := store.List(ctx, "till-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "111", entries[0].Barcode)
}

func TestClear(t *testing.T) {
	store := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "till-1", Entry{Barcode: "111"}))
	require.NoError(t, store.Clear(ctx, "till-1"))

	entries, err := store.List(ctx, "till-1", 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecorderNotify(t *testing.T) {
	store := newTestStore(t, 10)
	rec := Recorder{Store: store}
	ctx := context.Background()

	require.NoError(t, rec.Notify(ctx, events.LookupEvent{
		Topic:       events.TopicLookupResolved,
		Barcode:     "111",
		ProductName: "Teh Botol",
		Quantity:    1,
		UnitPrice:   550000,
		Device:      "till-1",
		OccurredAt:  time.Now(),
	}))

	// misses and deviceless lookups never land in history
	require.NoError(t, rec.Notify(ctx, events.LookupEvent{
		Topic:   events.TopicLookupMissed,
		Barcode: "000",
		Device:  "till-1",
	}))
	require.NoError(t, rec.Notify(ctx, events.LookupEvent{
		Topic:   events.TopicLookupResolved,
		Barcode: "222",
	}))

	entries, err := store.List(ctx, "till-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "111", entries[0].Barcode)
	require.Equal(t, "Teh Botol", entries[0].Name)
}
