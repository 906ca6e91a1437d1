package capability

import (
	"context"
	"sync"
)

// LegacyBus is the event surface 1.x hosts exposed: numeric handler
// tokens from On, explicit Off, synchronous Emit, no contexts and no
// subscription handles.
type LegacyBus interface {
	// On registers a handler for a topic and returns its token.
	On(topic string, fn func(payload any)) int

	// Off removes the handler registered under the token.
	Off(topic string, id int)

	// Emit delivers a payload to every handler of the topic.
	Emit(topic string, payload any)
}

// Bridge adapts a LegacyBus to the modern Events contract. It is the
// polyfill registered under ProviderEvents on hosts that predate
// subscription handles; subscribers see the modern surface while
// delivery still runs over the old bus.
type Bridge struct {
	bus LegacyBus
}

// NewBridge wraps a legacy bus in the modern Events contract.
func NewBridge(bus LegacyBus) *Bridge {
	return &Bridge{bus: bus}
}

// Emit publishes through the legacy bus. The legacy surface cannot
// fail, so the error is always nil; keeping it in the signature
// preserves the modern contract.
func (b *Bridge) Emit(ctx context.Context, topic string, payload any) error {
	b.bus.Emit(topic, payload)
	return nil
}

// Subscribe maps the modern handler onto a legacy On registration. The
// subscription is released by Unsubscribe or when ctx is cancelled,
// whichever comes first.
func (b *Bridge) Subscribe(ctx context.Context, topic string, h Handler) (Subscription, error) {
	id := b.bus.On(topic, func(payload any) {
		h(ctx, topic, payload)
	})

	sub := &bridgeSubscription{
		off: func() { b.bus.Off(topic, id) },
	}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Unsubscribe()
		}()
	}

	return sub, nil
}

type bridgeSubscription struct {
	once sync.Once
	off  func()
}

func (s *bridgeSubscription) Unsubscribe() {
	s.once.Do(s.off)
}

var _ Events = (*Bridge)(nil)
