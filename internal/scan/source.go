package scan

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Code is a single scanned barcode together with the terminal that read it.
type Code struct {
	Barcode string `json:"barcode"`
	Device  string `json:"device,omitempty"`
}

// Source yields scanned codes until the context is cancelled.
type Source interface {
	Codes(ctx context.Context) (<-chan Code, error)
}

// RedisSource subscribes to a Redis pub/sub channel fed by scanner bridges
// and the HTTP ingest endpoint.
type RedisSource struct {
	Client  *redis.Client
	Channel string
	Logger  zerolog.Logger
}

func (s RedisSource) Codes(ctx context.Context) (<-chan Code, error) {
	sub := s.Client.Subscribe(ctx, s.Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Code, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				code, err := decodeMessage(msg.Payload)
				if err != nil {
					s.Logger.Warn().Err(err).Msg("skip malformed scan message")
					continue
				}
				select {
				case out <- code:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
