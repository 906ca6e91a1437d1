package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Registry for tests and single-host
// deployments. Entries have no TTL; they live until deregistered or the
// registry is closed.
type Memory struct {
	mu        sync.RWMutex
	instances map[string]map[string]InstanceInfo
	closed    bool
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{instances: make(map[string]map[string]InstanceInfo)}
}

// Register announces an instance, replacing any entry with the same
// InstanceID.
func (m *Memory) Register(ctx context.Context, info InstanceInfo) error {
	if info.Name == "" || info.InstanceID == "" {
		return fmt.Errorf("instance name and id are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("registry is closed")
	}

	byID, ok := m.instances[info.Name]
	if !ok {
		byID = make(map[string]InstanceInfo)
		m.instances[info.Name] = byID
	}
	byID[info.InstanceID] = info
	return nil
}

// Deregister withdraws one instance. Unknown instances are a no-op.
func (m *Memory) Deregister(ctx context.Context, name, instanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("registry is closed")
	}

	byID, ok := m.instances[name]
	if !ok {
		return nil
	}
	delete(byID, instanceID)
	if len(byID) == 0 {
		delete(m.instances, name)
	}
	return nil
}

// Discover returns the live instances of the named plugin, ordered by
// InstanceID for stable iteration.
func (m *Memory) Discover(ctx context.Context, name string) ([]InstanceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("registry is closed")
	}

	byID := m.instances[name]
	out := make([]InstanceInfo, 0, len(byID))
	for _, info := range byID {
		out = append(out, info)
	}
	sortInstances(out)
	return out, nil
}

// DiscoverAll returns every live instance across all plugins.
func (m *Memory) DiscoverAll(ctx context.Context) ([]InstanceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("registry is closed")
	}

	var out []InstanceInfo
	for _, byID := range m.instances {
		for _, info := range byID {
			out = append(out, info)
		}
	}
	sortInstances(out)
	return out, nil
}

// Close empties the registry. Further calls return errors.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.instances = nil
	return nil
}

func sortInstances(list []InstanceInfo) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].InstanceID < list[j].InstanceID
	})
}

var _ Registry = (*Memory)(nil)
