package plugin

import (
	"log/slog"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/types"
)

// Runtime is the surface a plugin sees when one of its hooks runs.
// It bundles the capabilities the host granted the plugin: scoped storage,
// the event bus, outbound HTTP, the acting identity, and a logger already
// tagged with the plugin's name.
type Runtime interface {
	// PluginName returns the name of the plugin this runtime belongs to.
	PluginName() string

	// Logger returns a structured logger scoped to the plugin.
	Logger() *slog.Logger

	// Storage returns the plugin's persistent key-value storage.
	// Keys are isolated per plugin; two plugins never see each other's data.
	Storage() capability.Storage

	// Events returns the host event bus for publishing and subscribing.
	Events() capability.Events

	// HTTP returns the client for outbound HTTP requests.
	HTTP() capability.HTTP

	// Identity returns the identity the current operation runs as.
	Identity() types.Identity
}

// RuntimeConfig holds everything needed to construct a plugin runtime.
type RuntimeConfig struct {
	PluginName string
	Bundle     capability.Bundle
	Logger     *slog.Logger
	Identity   types.Identity
}

// NewRuntime creates a runtime from a capability bundle.
// A nil logger falls back to slog.Default(); the identity defaults to
// anonymous. The logger is tagged with the plugin name so every line a
// hook emits is attributable.
func NewRuntime(cfg RuntimeConfig) Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	identity := cfg.Identity
	if identity.ID == "" {
		identity = types.Anonymous()
	}
	return &sdkRuntime{
		pluginName: cfg.PluginName,
		bundle:     cfg.Bundle,
		logger:     logger.With(slog.String("plugin", cfg.PluginName)),
		identity:   identity,
	}
}

// sdkRuntime is the private implementation of the Runtime interface.
type sdkRuntime struct {
	pluginName string
	bundle     capability.Bundle
	logger     *slog.Logger
	identity   types.Identity
}

func (r *sdkRuntime) PluginName() string          { return r.pluginName }
func (r *sdkRuntime) Logger() *slog.Logger        { return r.logger }
func (r *sdkRuntime) Storage() capability.Storage { return r.bundle.Storage }
func (r *sdkRuntime) Events() capability.Events   { return r.bundle.Events }
func (r *sdkRuntime) HTTP() capability.HTTP       { return r.bundle.HTTP }
func (r *sdkRuntime) Identity() types.Identity    { return r.identity }

var _ Runtime = (*sdkRuntime)(nil)
