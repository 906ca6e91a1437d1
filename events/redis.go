package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/atriumhq/sdk/capability"
)

// DefaultChannelPrefix namespaces plugin event topics inside the Redis
// pub/sub keyspace.
const DefaultChannelPrefix = "atrium:events:"

// RedisOptions holds the configuration for connecting the event bus to
// Redis.
type RedisOptions struct {
	// URL is the Redis connection URL (redis://host:port or rediss://host:port for TLS)
	URL string

	// ChannelPrefix is prepended to every topic to form the pub/sub
	// channel name.
	ChannelPrefix string

	// TLS configuration (optional, used with rediss:// URLs)
	TLS *tls.Config

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration

	// Logger receives subscription errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// envelope is the wire format published to Redis. The ID lets
// subscribers de-duplicate when the host fans the same event into
// multiple channels.
type envelope struct {
	ID          string `json:"id"`
	Topic       string `json:"topic"`
	Payload     any    `json:"payload"`
	PublishedAt int64  `json:"published_at"`
}

// Redis is a Redis pub/sub implementation of the events capability,
// letting plugin events cross process boundaries.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis creates a Redis-backed event bus and verifies connectivity.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ChannelPrefix == "" {
		opts.ChannelPrefix = DefaultChannelPrefix
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.DialTimeout = opts.ConnectTimeout

	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{
		client: client,
		prefix: opts.ChannelPrefix,
		logger: opts.Logger,
	}, nil
}

// Emit publishes the payload to every subscriber of the topic, in this
// process or any other sharing the Redis instance.
func (b *Redis) Emit(ctx context.Context, topic string, payload any) error {
	env := envelope{
		ID:          uuid.New().String(),
		Topic:       topic,
		Payload:     payload,
		PublishedAt: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, b.prefix+topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe registers a handler for the topic. Delivery runs on a
// dedicated goroutine until Unsubscribe is called or the context is
// cancelled.
func (b *Redis) Subscribe(ctx context.Context, topic string, h capability.Handler) (capability.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, b.prefix+topic)

	// Wait for subscription confirmation so Emit calls made after
	// Subscribe returns are guaranteed to be seen.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &redisSubscription{pubsub: pubsub, cancel: cancel}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.logger.Error("failed to decode event",
						slog.String("topic", topic),
						slog.String("error", err.Error()))
					continue
				}
				b.dispatch(subCtx, topic, env.Payload, h)
			}
		}
	}()

	return sub, nil
}

func (b *Redis) dispatch(ctx context.Context, topic string, payload any, h capability.Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("topic", topic),
				slog.Any("panic", r))
		}
	}()
	h(ctx, topic, payload)
}

// Close closes the Redis connection. Active subscriptions end.
func (b *Redis) Close() error {
	return b.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	once   sync.Once
}

func (s *redisSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		_ = s.pubsub.Close()
	})
}

var _ capability.Events = (*Redis)(nil)
