package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Config tunes the per client request budget.
type Config struct {
	Window time.Duration
	Max    int64
	Prefix string
}

// New builds a limiter backed by Redis so the budget is shared across
// API replicas.
func New(client *redis.Client, cfg Config) (*limiter.Limiter, error) {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "kasir:ratelimit"
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: prefix,
	})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, limiter.Rate{Period: cfg.Window, Limit: cfg.Max}), nil
}

// Middleware enforces the limit per client key. Scanner terminals identify
// themselves with X-Device-ID; everything else falls back to the remote
// address.
func Middleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := l.Get(r.Context(), clientKey(r))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))
			if lctx.Reached {
				common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "request budget exhausted", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if device := r.Header.Get("X-Device-ID"); device != "" {
		return "device:" + device
	}
	return "addr:" + r.RemoteAddr
}
