package deprecation

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultCap is the default maximum number of console emissions per
// feature. Usage beyond the cap is still counted for the report.
const DefaultCap = 5

// Config configures a Manager.
type Config struct {
	// Cap bounds console emissions per feature. Defaults to DefaultCap.
	Cap int

	// Logger receives the formatted warnings. Defaults to slog.Default().
	Logger *slog.Logger

	// Meter, when set, records a usage counter per warning.
	Meter metric.Meter
}

// Manager tracks usage of deprecated API surfaces. Console output is
// throttled per feature so a chatty legacy plugin cannot flood the log,
// while usage counters keep incrementing so the migration report stays
// accurate after the cap is hit.
//
// Managers are explicitly constructed and injected; counters last for
// the manager's lifetime and reset only when the host process restarts.
// All methods are safe for concurrent use and never return an error —
// a broken deprecation subsystem must not break plugin execution.
type Manager struct {
	cap     int
	logger  *slog.Logger
	counter metric.Int64Counter

	mu      sync.Mutex
	catalog map[string]Warning
	counts  map[string]int
	emitted map[string]int
	total   int
}

// NewManager creates a Manager from the given configuration.
func NewManager(cfg Config) *Manager {
	if cfg.Cap <= 0 {
		cfg.Cap = DefaultCap
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	m := &Manager{
		cap:     cfg.Cap,
		logger:  cfg.Logger,
		catalog: make(map[string]Warning),
		counts:  make(map[string]int),
		emitted: make(map[string]int),
	}

	if cfg.Meter != nil {
		counter, err := cfg.Meter.Int64Counter("atrium.plugin.deprecation.warnings",
			metric.WithDescription("Uses of deprecated plugin API surfaces"))
		if err != nil {
			cfg.Logger.Warn("deprecation counter unavailable", slog.String("error", err.Error()))
		} else {
			m.counter = counter
		}
	}

	return m
}

// Register adds or replaces the catalog entry for a feature, so later
// Warn calls render the full message. Registering an empty feature name
// is a no-op.
func (m *Manager) Register(w Warning) {
	if w.Feature == "" {
		return
	}
	m.mu.Lock()
	m.catalog[w.Feature] = w
	m.mu.Unlock()
}

// RegisterAll registers every given warning.
func (m *Manager) RegisterAll(warnings []Warning) {
	for _, w := range warnings {
		m.Register(w)
	}
}

// Registered returns the catalog entry for a feature, if any.
func (m *Manager) Registered(feature string) (Warning, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.catalog[feature]
	return w, ok
}

// Warn records one use of a deprecated feature and, while under the
// per-feature cap, emits the formatted console message. Unknown
// features are auto-registered bare so tracking never fails. Optional
// contextInfo strings are joined into the message's context clause.
func (m *Manager) Warn(feature string, contextInfo ...string) {
	if feature == "" {
		return
	}
	// A panicking log handler must not take plugin execution down with it.
	defer func() { _ = recover() }()

	m.mu.Lock()
	w, ok := m.catalog[feature]
	if !ok {
		w = Warning{Feature: feature}
		m.catalog[feature] = w
	}
	m.counts[feature]++
	m.total++
	count := m.counts[feature]
	emit := m.emitted[feature] < m.cap
	if emit {
		m.emitted[feature]++
	}
	m.mu.Unlock()

	if m.counter != nil {
		m.counter.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("feature", feature)))
	}

	if emit {
		m.logger.Warn(w.Message(strings.Join(contextInfo, "; ")),
			slog.String("feature", feature),
			slog.Int("usage_count", count))
	}
}

// FeatureUsage aggregates one feature's deprecation activity.
type FeatureUsage struct {
	Feature     string `json:"feature"`
	UsageCount  int    `json:"usage_count"`
	Since       string `json:"deprecated_since,omitempty"`
	RemovedIn   string `json:"removed_in,omitempty"`
	Replacement string `json:"replacement,omitempty"`
}

// Report is a point-in-time summary of deprecated API usage, suitable
// for migration planning.
type Report struct {
	TotalWarnings int            `json:"total_warnings"`
	Features      []FeatureUsage `json:"features"`
}

// Report summarizes all recorded usage, sorted by feature name. Only
// features that were actually used appear; cataloged-but-unused entries
// are omitted.
func (m *Manager) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	features := make([]FeatureUsage, 0, len(m.counts))
	for feature, count := range m.counts {
		w := m.catalog[feature]
		features = append(features, FeatureUsage{
			Feature:     feature,
			UsageCount:  count,
			Since:       w.Since,
			RemovedIn:   w.RemovedIn,
			Replacement: w.Replacement,
		})
	}
	sort.Slice(features, func(i, j int) bool {
		return features[i].Feature < features[j].Feature
	})

	return Report{
		TotalWarnings: m.total,
		Features:      features,
	}
}
