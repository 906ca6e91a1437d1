package capability

import (
	"context"
	"errors"
	"net/http"
)

// Provider names under which the host registers its capability surface.
// Polyfill shims register under the same names, so consumers never need
// to know whether a capability is native or bridged.
const (
	// ProviderStorage is the flat key-value store exposed to plugins.
	ProviderStorage = "storage"

	// ProviderEvents is the modern publish/subscribe bus.
	ProviderEvents = "events"

	// ProviderHTTP is the outbound HTTP client.
	ProviderHTTP = "http"

	// ProviderContexts mints per-plugin runtime bundles.
	ProviderContexts = "contexts"

	// ProviderNamespaces scopes flat storage to a namespace.
	ProviderNamespaces = "storage.namespaces"

	// ProviderLegacyEvents is the old On/Off bus found on 1.x hosts.
	// It is only ever read by the events bridge shim.
	ProviderLegacyEvents = "events.legacy"
)

// Common errors returned by capability operations.
var (
	// ErrKeyNotFound is returned when a storage key does not exist.
	ErrKeyNotFound = errors.New("capability: storage key not found")

	// ErrInvalidKey is returned when a storage key is empty.
	ErrInvalidKey = errors.New("capability: invalid storage key")

	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("capability: nil provider")

	// ErrNoShim is returned when a polyfill is requested for a feature
	// the installer has no shim for.
	ErrNoShim = errors.New("capability: no shim for feature")
)

// Storage is the asynchronous key-value surface plugins persist data
// through. Implementations decide durability; keys are plain strings
// scoped to one plugin by the runtime that hands the storage out.
type Storage interface {
	// Get retrieves a value by key. Returns ErrKeyNotFound if absent.
	Get(ctx context.Context, key string) (any, error)

	// Set stores a value, replacing any existing one.
	Set(ctx context.Context, key string, value any) error

	// Delete removes a value by key. Returns ErrKeyNotFound if absent.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys currently stored.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes every value.
	Clear(ctx context.Context) error
}

// Handler receives events delivered to a subscription.
type Handler func(ctx context.Context, topic string, payload any)

// Subscription is a live event subscription. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Events is the publish/subscribe surface exposed to plugins.
type Events interface {
	// Emit publishes a payload to every subscriber of the topic.
	Emit(ctx context.Context, topic string, payload any) error

	// Subscribe registers a handler for a topic. The handler runs until
	// the subscription is released or ctx is cancelled.
	Subscribe(ctx context.Context, topic string, h Handler) (Subscription, error)
}

// Response is the reduced HTTP response handed back to plugins.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTP is the outbound request surface exposed to plugins.
type HTTP interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error)
	Put(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error)
	Delete(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Bundle groups the per-plugin capability implementations a runtime
// context is assembled from. Storage arrives already scoped to the
// plugin's namespace.
type Bundle struct {
	Storage Storage
	Events  Events
	HTTP    HTTP
}

// ContextFactory mints the capability bundle backing one plugin's
// runtime context. Modern hosts register a native factory; on older
// hosts the polyfill installer synthesizes one from the discrete
// storage, events, and http providers.
type ContextFactory interface {
	ForPlugin(name string) (Bundle, error)
}

// NamespaceFactory scopes a flat storage to a named namespace. Hosts
// newer than 2.5 register a native implementation; the polyfill shim
// falls back to key prefixing.
type NamespaceFactory interface {
	Namespace(base Storage, name string) Storage
}
