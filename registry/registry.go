// Package registry provides discovery of running plugin instances.
//
// Hosts that run plugins across several processes register each enabled
// instance so dashboards and peer hosts can see what is live. Two
// implementations are provided:
//
//   - Etcd: production-grade, backed by an etcd cluster; entries carry a
//     lease with TTL so crashed hosts disappear automatically.
//   - Memory: in-process, for tests and single-host deployments that do
//     not need cross-process discovery.
//
// The lifecycle controller announces an instance when a plugin is
// enabled and withdraws it when the plugin is disabled, so registry
// contents track the set of plugins actually serving.
package registry

import (
	"context"
	"time"
)

// InstanceInfo describes one enabled plugin instance.
//
// Several instances of the same plugin may serve at once (one per host
// process); each carries its own InstanceID.
type InstanceInfo struct {
	// Name is the plugin name from its manifest.
	Name string `json:"name"`

	// Version is the plugin version from its manifest.
	Version string `json:"version"`

	// InstanceID uniquely identifies this instance, typically a UUID
	// minted when the plugin is enabled.
	InstanceID string `json:"instance_id"`

	// State is the instance's lifecycle state at registration time,
	// in its string form ("enabled" for announced instances).
	State string `json:"state"`

	// Endpoint is the address the instance can be reached at, when the
	// host exposes one. Format "host:port", or empty for in-process
	// plugins with no network surface.
	Endpoint string `json:"endpoint,omitempty"`

	// Metadata carries host-specific attributes, such as the plugin
	// type or the hosting node's name.
	Metadata map[string]string `json:"metadata,omitempty"`

	// EnabledAt is when the instance was enabled.
	EnabledAt time.Time `json:"enabled_at"`
}

// Registry is the plugin instance registration and discovery surface.
//
// Implementations must be safe for concurrent use. Registration is
// upsert-style: registering an InstanceID that is already present
// replaces the existing entry instead of duplicating it. Deregistering
// an unknown instance is a no-op, not an error, so disable paths can
// always withdraw without tracking whether the announce succeeded.
type Registry interface {
	// Register announces an instance, making it discoverable.
	Register(ctx context.Context, info InstanceInfo) error

	// Deregister withdraws one instance of the named plugin.
	Deregister(ctx context.Context, name, instanceID string) error

	// Discover returns the live instances of the named plugin.
	Discover(ctx context.Context, name string) ([]InstanceInfo, error)

	// DiscoverAll returns every live plugin instance.
	DiscoverAll(ctx context.Context) ([]InstanceInfo, error)

	// Close releases registry resources. Further calls on a closed
	// registry return errors.
	Close() error
}

// Watcher is the optional change-notification surface. The etcd-backed
// registry implements it; the in-memory registry does not. Hosts that
// need push updates should type-assert:
//
//	if w, ok := reg.(registry.Watcher); ok {
//		ch, _ := w.Watch(ctx, "markdown-notes")
//		...
//	}
type Watcher interface {
	// Watch streams the full instance list for a plugin on every
	// change, starting with the current state. The channel closes when
	// ctx is cancelled or the registry is closed.
	Watch(ctx context.Context, name string) (<-chan []InstanceInfo, error)
}

// Config holds connection settings for the etcd-backed registry.
type Config struct {
	// Endpoints lists the etcd cluster endpoints, e.g.
	// ["etcd-0:2379", "etcd-1:2379"]. Required.
	Endpoints []string `json:"endpoints"`

	// Namespace prefixes every registry key. Instances are stored under
	// /{namespace}/plugins/{name}/{instance-id}. Defaults to "atrium".
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. An instance whose host
	// stops renewing disappears after at most this long. Defaults to 30.
	TTL int `json:"ttl"`

	// TLS configures mutual TLS toward etcd. Nil disables TLS.
	TLS *TLSConfig `json:"tls,omitempty"`
}
