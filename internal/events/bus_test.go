package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	events []LookupEvent
	err    error
}

func (m *memStore) InsertLookupEvent(ctx context.Context, ev LookupEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

type recordingNotifier struct {
	seen []LookupEvent
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, ev LookupEvent) error {
	n.seen = append(n.seen, ev)
	return n.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	ev := LookupEvent{Topic: TopicLookupResolved, Barcode: "111", Quantity: 1, OccurredAt: time.Now()}
	require.NoError(t, bus.Emit(context.Background(), ev))
	require.Len(t, store.events, 1)
	require.Len(t, notifier.seen, 1)
}

func TestEmitValidation(t *testing.T) {
	bus := &Bus{Store: &memStore{}}

	require.Error(t, bus.Emit(context.Background(), LookupEvent{Barcode: "111"}))
	require.Error(t, bus.Emit(context.Background(), LookupEvent{Topic: TopicLookupResolved}))
}

func TestEmitDefaultsOccurredAt(t *testing.T) {
	store := &memStore{}
	bus := &Bus{Store: store}

	require.NoError(t, bus.Emit(context.Background(), LookupEvent{Topic: TopicLookupResolved, Barcode: "111"}))
	require.False(t, store.events[0].OccurredAt.IsZero())
}

func TestEmitStoreFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	bus := &Bus{Store: &memStore{err: errors.New("insert failed")}, Notifiers: []Notifier{notifier}}

	err := bus.Emit(context.Background(), LookupEvent{Topic: TopicLookupResolved, Barcode: "111"})
	require.Error(t, err)
	require.Empty(t, notifier.seen, "notifiers should not run when persistence fails")
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	store := &memStore{}
	failing := &recordingNotifier{err: errors.New("history down")}
	healthy := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{failing, healthy}}

	err := bus.Emit(context.Background(), LookupEvent{Topic: TopicLookupResolved, Barcode: "111"})
	require.Error(t, err)
	require.Len(t, store.events, 1, "event is persisted despite notifier failure")
	require.Len(t, healthy.seen, 1, "remaining notifiers still run")
}
