package lifecycle

import (
	"context"
	"sync"

	"github.com/atriumhq/sdk/capability"
)

// trackedEvents wraps the events capability handed to a plugin so the
// controller can release every subscription the plugin still holds when
// it is disabled or torn down. Without this, a plugin whose disable
// hook forgets (or fails before) unsubscribing would keep receiving
// events while nominally inactive.
type trackedEvents struct {
	inner capability.Events

	mu     sync.Mutex
	nextID int
	subs   map[int]capability.Subscription
}

func newTrackedEvents(inner capability.Events) *trackedEvents {
	return &trackedEvents{
		inner: inner,
		subs:  make(map[int]capability.Subscription),
	}
}

func (t *trackedEvents) Emit(ctx context.Context, topic string, payload any) error {
	return t.inner.Emit(ctx, topic, payload)
}

func (t *trackedEvents) Subscribe(ctx context.Context, topic string, h capability.Handler) (capability.Subscription, error) {
	sub, err := t.inner.Subscribe(ctx, topic, h)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = sub
	t.mu.Unlock()

	return &trackedSubscription{tracker: t, id: id, inner: sub}, nil
}

// releaseAll unsubscribes every subscription still held. Safe to call
// repeatedly; already-released subscriptions are gone from the map.
func (t *trackedEvents) releaseAll() {
	t.mu.Lock()
	subs := make([]capability.Subscription, 0, len(t.subs))
	for _, sub := range t.subs {
		subs = append(subs, sub)
	}
	t.subs = make(map[int]capability.Subscription)
	t.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (t *trackedEvents) forget(id int) {
	t.mu.Lock()
	delete(t.subs, id)
	t.mu.Unlock()
}

type trackedSubscription struct {
	tracker *trackedEvents
	id      int
	inner   capability.Subscription
	once    sync.Once
}

func (s *trackedSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.tracker.forget(s.id)
		s.inner.Unsubscribe()
	})
}

var _ capability.Events = (*trackedEvents)(nil)
