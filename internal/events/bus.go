package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Topic names for emitted lookup events.
const (
	TopicLookupResolved = "lookup.resolved"
	TopicLookupMissed   = "lookup.missed"
)

// LookupEvent is the audit record of one barcode price lookup.
type LookupEvent struct {
	Topic           string
	Barcode         string
	ProductID       string
	ProductName     string
	Quantity        int
	UnitPrice       pricing.Money
	AppliedRuleID   string
	AppliedCategory string
	Device          string
	OccurredAt      time.Time
}

// Store defines the persistence operations required by the event bus.
type Store interface {
	InsertLookupEvent(ctx context.Context, ev LookupEvent) error
}

// Notifier reacts to emitted events (history, metrics, etc.).
type Notifier interface {
	Notify(ctx context.Context, ev LookupEvent) error
}

// Bus persists lookup events and fans them out to downstream handlers.
// Notifier failures never fail the lookup itself; they surface as a joined
// error for the caller to log.
type Bus struct {
	Store     Store
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, ev LookupEvent) error {
	if b == nil || b.Store == nil {
		return errors.New("events: store not configured")
	}
	ev.Topic = strings.TrimSpace(ev.Topic)
	if ev.Topic == "" {
		return errors.New("events: topic is required")
	}
	if strings.TrimSpace(ev.Barcode) == "" {
		return errors.New("events: barcode is required")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := b.Store.InsertLookupEvent(ctx, ev); err != nil {
		return fmt.Errorf("events: persist event: %w", err)
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return joined
}
