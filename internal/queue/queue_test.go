package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestEnqueueDeduplicates(t *testing.T) {
	client := newTestRedis(t)
	enq := Enqueuer{R: client, Prefix: "test", DedupTTL: time.Minute}
	ctx := context.Background()

	task := Task{Kind: "lookup", Payload: []byte(`{"barcode":"123"}`), IdempotencyKey: "scan:123"}
	require.NoError(t, enq.Enqueue(ctx, task))
	require.NoError(t, enq.Enqueue(ctx, task))

	n, err := client.ZCard(ctx, "test:queue:lookup").Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestEnqueueRejectsBadKind(t *testing.T) {
	enq := Enqueuer{R: newTestRedis(t)}
	err := enq.Enqueue(context.Background(), Task{Kind: "no spaces"})
	require.Error(t, err)
}

func TestWorkerProcessesTask(t *testing.T) {
	client := newTestRedis(t)
	enq := Enqueuer{R: client, Prefix: "test"}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, enq.Enqueue(ctx, Task{Kind: "lookup", Payload: []byte(`{"barcode":"1"}`)}))

	var handled atomic.Int32
	w := Worker{
		R:       client,
		Prefix:  "test",
		Kind:    "lookup",
		Handler: func(ctx context.Context, task Task) error { handled.Add(1); cancel(); return nil },
		Logger:  zerolog.Nop(),
	}
	require.NoError(t, w.Run(ctx))
	require.EqualValues(t, 1, handled.Load())
}

func TestWorkerRetriesThenDrops(t *testing.T) {
	client := newTestRedis(t)
	enq := Enqueuer{R: client, Prefix: "test"}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, enq.Enqueue(ctx, Task{Kind: "lookup", MaxAttempts: 2}))

	var attempts atomic.Int32
	w := Worker{
		R:         client,
		Prefix:    "test",
		Kind:      "lookup",
		RetryBase: 5 * time.Millisecond,
		Handler: func(ctx context.Context, task Task) error {
			if attempts.Add(1) >= 2 {
				defer cancel()
			}
			return context.DeadlineExceeded
		},
		Logger: zerolog.Nop(),
	}
	require.NoError(t, w.Run(ctx))
	require.EqualValues(t, 2, attempts.Load())
}
