package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/atriumhq/sdk/capability"
)

// InProc is an in-process implementation of the events capability.
// Handlers run synchronously on the emitting goroutine; a panicking
// handler is recovered and logged so one plugin cannot take down
// another's emit path.
type InProc struct {
	mu       sync.RWMutex
	handlers map[string]map[int]capability.Handler
	nextID   int
	logger   *slog.Logger
}

// NewInProc creates an in-process event bus. A nil logger falls back to
// slog.Default().
func NewInProc(logger *slog.Logger) *InProc {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProc{
		handlers: make(map[string]map[int]capability.Handler),
		logger:   logger,
	}
}

// Emit delivers the payload to every handler subscribed to the topic.
func (b *InProc) Emit(ctx context.Context, topic string, payload any) error {
	b.mu.RLock()
	subs := make([]capability.Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		subs = append(subs, h)
	}
	b.mu.RUnlock()

	for _, h := range subs {
		b.dispatch(ctx, topic, payload, h)
	}
	return nil
}

func (b *InProc) dispatch(ctx context.Context, topic string, payload any, h capability.Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("topic", topic),
				slog.Any("panic", r))
		}
	}()
	h(ctx, topic, payload)
}

// Subscribe registers a handler for the topic. The subscription ends
// when Unsubscribe is called or the context is cancelled, whichever
// comes first.
func (b *InProc) Subscribe(ctx context.Context, topic string, h capability.Handler) (capability.Subscription, error) {
	b.mu.Lock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]capability.Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = h
	b.mu.Unlock()

	sub := &inprocSubscription{bus: b, topic: topic, id: id}

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	return sub, nil
}

type inprocSubscription struct {
	bus   *InProc
	topic string
	id    int
	once  sync.Once
}

func (s *inprocSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if subs := s.bus.handlers[s.topic]; subs != nil {
			delete(subs, s.id)
			if len(subs) == 0 {
				delete(s.bus.handlers, s.topic)
			}
		}
	})
}

var _ capability.Events = (*InProc)(nil)
