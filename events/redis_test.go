package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestBus creates a miniredis instance and returns a connected Redis bus.
func setupTestBus(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	bus, err := NewRedis(RedisOptions{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		ConnectTimeout: 5 * time.Second,
		Logger:         quietLogger(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bus.Close()
		mr.Close()
	})

	return bus, mr
}

// collector gathers payloads from concurrent handler invocations.
type collector struct {
	mu       sync.Mutex
	payloads []any
}

func (c *collector) handle(ctx context.Context, topic string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func (c *collector) first() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.payloads) == 0 {
		return nil
	}
	return c.payloads[0]
}

func TestNewRedisBus(t *testing.T) {
	t.Run("connection failure", func(t *testing.T) {
		_, err := NewRedis(RedisOptions{
			URL:            "redis://localhost:99999",
			ConnectTimeout: 100 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := NewRedis(RedisOptions{
			URL: "invalid://url",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Redis URL")
	})
}

func TestRedisEmitSubscribe(t *testing.T) {
	bus, _ := setupTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got collector
	sub, err := bus.Subscribe(ctx, "sync.completed", got.handle)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Emit(ctx, "sync.completed", map[string]any{
		"items": float64(12),
	}))

	require.Eventually(t, func() bool { return got.len() == 1 }, 2*time.Second, 10*time.Millisecond)

	payload, ok := got.first().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(12), payload["items"])
}

func TestRedisMultipleSubscribers(t *testing.T) {
	bus, _ := setupTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var first, second collector
	sub1, err := bus.Subscribe(ctx, "broadcast", first.handle)
	require.NoError(t, err)
	defer sub1.Unsubscribe()

	sub2, err := bus.Subscribe(ctx, "broadcast", second.handle)
	require.NoError(t, err)
	defer sub2.Unsubscribe()

	require.NoError(t, bus.Emit(ctx, "broadcast", "hello"))

	require.Eventually(t, func() bool {
		return first.len() == 1 && second.len() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisUnsubscribeStopsDelivery(t *testing.T) {
	bus, _ := setupTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got collector
	sub, err := bus.Subscribe(ctx, "tick", got.handle)
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	require.NoError(t, bus.Emit(ctx, "tick", nil))

	// Give delivery a moment to (not) happen.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, got.len())
}

func TestRedisTopicsArePrefixed(t *testing.T) {
	bus, mr := setupTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got collector
	sub, err := bus.Subscribe(ctx, "scoped", got.handle)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// A raw publish on the unprefixed channel must not reach the bus.
	mr.Publish("scoped", `{"id":"x","topic":"scoped","payload":1}`)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, got.len())
}
