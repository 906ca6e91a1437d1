package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EnvEndpoints is the environment variable NewEtcdFromEnv reads the
// etcd endpoint list from.
const EnvEndpoints = "ATRIUM_REGISTRY_ENDPOINTS"

// Etcd implements Registry over an etcd cluster.
//
// Every registered instance is stored under a lease with the configured
// TTL; a background goroutine renews the lease every TTL/3 so entries
// for live hosts persist while entries for crashed hosts expire on
// their own. Deregistering revokes the lease, removing the entry
// immediately.
//
// All methods are safe for concurrent use.
type Etcd struct {
	client    *clientv3.Client
	namespace string
	ttl       int

	mu         sync.Mutex
	leases     map[string]clientv3.LeaseID
	cancels    map[string]context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	closedChan chan struct{}
}

// NewEtcd connects to the etcd cluster described by cfg and verifies
// connectivity before returning. The returned registry must be closed
// when no longer needed to stop its keepalive goroutines.
func NewEtcd(cfg Config) (*Etcd, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry endpoints cannot be empty")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "atrium"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	}
	if cfg.TLS != nil && cfg.TLS.Enabled {
		tlsConfig, err := cfg.TLS.clientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		clientCfg.TLS = tlsConfig
	}

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	// A quick read proves the cluster is reachable before anything
	// registers against it.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Etcd{
		client:     cli,
		namespace:  namespace,
		ttl:        ttl,
		leases:     make(map[string]clientv3.LeaseID),
		cancels:    make(map[string]context.CancelFunc),
		closedChan: make(chan struct{}),
	}, nil
}

// NewEtcdFromEnv builds a registry from the ATRIUM_REGISTRY_ENDPOINTS
// environment variable, a comma-separated endpoint list. When the
// variable is unset it returns (nil, nil): the host runs fine without
// cross-process discovery, it just is not discoverable.
func NewEtcdFromEnv() (*Etcd, error) {
	raw := os.Getenv(EnvEndpoints)
	if raw == "" {
		return nil, nil
	}

	endpoints := strings.Split(raw, ",")
	for i, ep := range endpoints {
		endpoints[i] = strings.TrimSpace(ep)
	}

	return NewEtcd(Config{Endpoints: endpoints})
}

// Register announces an instance under a fresh lease and starts its
// keepalive goroutine. Re-registering the same InstanceID replaces the
// entry and restarts the keepalive.
func (e *Etcd) Register(ctx context.Context, info InstanceInfo) error {
	if info.Name == "" || info.InstanceID == "" {
		return fmt.Errorf("instance name and id are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("registry is closed")
	}

	if cancel, ok := e.cancels[info.InstanceID]; ok {
		cancel()
		delete(e.cancels, info.InstanceID)
	}

	lease, err := e.client.Grant(ctx, int64(e.ttl))
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal instance info: %w", err)
	}

	key := e.key(info.Name, info.InstanceID)
	if _, err := e.client.Put(ctx, key, string(data), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register instance: %w", err)
	}

	e.leases[info.InstanceID] = lease.ID

	keepaliveCtx, cancel := context.WithCancel(context.Background())
	e.cancels[info.InstanceID] = cancel
	e.wg.Add(1)
	go e.keepalive(keepaliveCtx, lease.ID, info.InstanceID)

	return nil
}

// Deregister revokes the instance's lease, deleting its entry. Unknown
// instances are a no-op.
func (e *Etcd) Deregister(ctx context.Context, name, instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("registry is closed")
	}

	if cancel, ok := e.cancels[instanceID]; ok {
		cancel()
		delete(e.cancels, instanceID)
	}

	leaseID, ok := e.leases[instanceID]
	if !ok {
		return nil
	}
	if _, err := e.client.Revoke(ctx, leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	delete(e.leases, instanceID)
	return nil
}

// Discover returns the live instances of the named plugin.
func (e *Etcd) Discover(ctx context.Context, name string) ([]InstanceInfo, error) {
	if e.isClosed() {
		return nil, fmt.Errorf("registry is closed")
	}

	prefix := fmt.Sprintf("/%s/plugins/%s/", e.namespace, name)
	resp, err := e.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover instances: %w", err)
	}

	instances := make([]InstanceInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info InstanceInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			// Skip entries written by incompatible hosts.
			continue
		}
		instances = append(instances, info)
	}
	return instances, nil
}

// DiscoverAll returns every live plugin instance.
func (e *Etcd) DiscoverAll(ctx context.Context) ([]InstanceInfo, error) {
	if e.isClosed() {
		return nil, fmt.Errorf("registry is closed")
	}

	prefix := fmt.Sprintf("/%s/plugins/", e.namespace)
	resp, err := e.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover instances: %w", err)
	}

	instances := make([]InstanceInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info InstanceInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			continue
		}
		instances = append(instances, info)
	}
	return instances, nil
}

// Watch streams the instance list for a plugin on every change,
// starting with the current state. The channel closes when ctx is
// cancelled or the registry is closed.
func (e *Etcd) Watch(ctx context.Context, name string) (<-chan []InstanceInfo, error) {
	if e.isClosed() {
		return nil, fmt.Errorf("registry is closed")
	}

	ch := make(chan []InstanceInfo, 1)

	initial, err := e.Discover(ctx, name)
	if err != nil {
		return nil, err
	}
	ch <- initial

	prefix := fmt.Sprintf("/%s/plugins/%s/", e.namespace, name)
	watchChan := e.client.Watch(ctx, prefix, clientv3.WithPrefix())

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-e.closedChan:
				return
			case resp, ok := <-watchChan:
				if !ok || resp.Err() != nil {
					return
				}

				// Re-query instead of folding the event stream; the
				// full list is small and callers want current state.
				instances, err := e.Discover(context.Background(), name)
				if err != nil {
					continue
				}

				select {
				case ch <- instances:
				case <-ctx.Done():
					return
				case <-e.closedChan:
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close stops every keepalive goroutine and closes the etcd client.
// Leased entries expire on their own after at most TTL seconds.
func (e *Etcd) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = make(map[string]context.CancelFunc)
	close(e.closedChan)
	e.mu.Unlock()

	e.wg.Wait()
	return e.client.Close()
}

// keepalive renews the lease every TTL/3 until cancelled or the lease
// becomes invalid.
func (e *Etcd) keepalive(ctx context.Context, leaseID clientv3.LeaseID, instanceID string) {
	defer e.wg.Done()

	interval := time.Duration(e.ttl) * time.Second / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.closedChan:
			return
		case <-ticker.C:
			if _, err := e.client.KeepAliveOnce(context.Background(), leaseID); err != nil {
				e.mu.Lock()
				delete(e.leases, instanceID)
				delete(e.cancels, instanceID)
				e.mu.Unlock()
				return
			}
		}
	}
}

func (e *Etcd) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Etcd) key(name, instanceID string) string {
	return fmt.Sprintf("/%s/plugins/%s/%s", e.namespace, name, instanceID)
}

var (
	_ Registry = (*Etcd)(nil)
	_ Watcher  = (*Etcd)(nil)
)
