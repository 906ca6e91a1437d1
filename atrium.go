package sdk

import (
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/compat"
	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/events"
	"github.com/atriumhq/sdk/lifecycle"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/storage"
	"github.com/atriumhq/sdk/version"
)

// instrumentationName identifies the SDK to OpenTelemetry meters.
const instrumentationName = "atrium-sdk"

// defaultHTTPTimeout bounds outbound plugin HTTP requests in the
// default capability wiring.
const defaultHTTPTimeout = 30 * time.Second

// New creates a plugin Manager with the default host wiring: in-memory
// storage, an in-process event bus, a timeout-bounded HTTP client, the
// standard compatibility adapters, and the standard polyfill catalog.
// Options replace any part of that wiring.
//
// Example:
//
//	host, err := sdk.New(
//	    sdk.WithLogger(logger),
//	    sdk.WithHostVersion("3.2.0"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer host.Close()
func New(opts ...Option) (Manager, error) {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Create default logger if not provided
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var meter metric.Meter
	if cfg.meterProvider != nil {
		meter = cfg.meterProvider.Meter(instrumentationName)
	}

	caps := cfg.capabilities
	if caps == nil {
		caps = capability.NewRegistry(cfg.logger)
		defaults := []struct {
			name     string
			provider any
		}{
			{capability.ProviderStorage, storage.NewMemory()},
			{capability.ProviderEvents, events.NewInProc(cfg.logger)},
			{capability.ProviderHTTP, capability.NewClient(defaultHTTPTimeout)},
		}
		for _, d := range defaults {
			if err := caps.Register(d.name, d.provider); err != nil {
				return nil, NewConfigurationError("New", err)
			}
		}
	}

	host := cfg.detector
	if host == nil {
		host = version.NewDetector(version.Config{
			Advertised: cfg.hostVersion,
			Probes:     capabilityProbes(caps),
			Logger:     cfg.logger,
		})
	}

	deps := cfg.deprecations
	if deps == nil {
		deps = deprecation.NewManager(deprecation.Config{
			Cap:    cfg.warningCap,
			Logger: cfg.logger,
			Meter:  meter,
		})
	}

	adapters := cfg.adapters
	if adapters == nil {
		adapters = compat.DefaultRegistry(deps)
	}

	return &manager{
		logger:    cfg.logger,
		tracer:    cfg.tracer,
		meter:     meter,
		host:      host,
		deps:      deps,
		adapters:  adapters,
		caps:      caps,
		polyfills: capability.NewInstaller(caps, cfg.logger),
		instances: cfg.instances,
		health:    cfg.health,
		identity:  cfg.identity,
		endpoint:  cfg.endpoint,
		plugins:   make(map[string]*lifecycle.Controller),
	}, nil
}

// NewPlugin creates a plugin with the provided options, bridging to the
// plugin package's builder. The plugin must have at minimum a name and
// a version; every hook is optional.
//
// Example:
//
//	p, err := sdk.NewPlugin(
//	    sdk.WithPluginName("markdown-notes"),
//	    sdk.WithPluginVersion("1.2.0"),
//	    sdk.WithPluginDescription("Keeps notes in Markdown files"),
//	    sdk.WithOnEnable(func(ctx context.Context, rt plugin.Runtime) error {
//	        rt.Logger().Info("notes ready")
//	        return nil
//	    }),
//	)
func NewPlugin(opts ...PluginOption) (plugin.Plugin, error) {
	cfg := plugin.NewConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return plugin.New(cfg)
}

// capabilityProbes builds version probes over what the host actually
// registered, so hosts that advertise no version still resolve one from
// their capability surface.
func capabilityProbes(caps *capability.Registry) []version.Probe {
	return version.ProbesFromLookup(func(feature string) bool {
		switch feature {
		case version.FeatureContexts:
			_, ok := caps.Contexts()
			return ok
		case version.FeatureEventSubscribe:
			_, ok := caps.Events()
			return ok
		case version.FeatureStorageNamespaces:
			_, ok := caps.Namespaces()
			return ok
		default:
			// health.checks, config.schemas, and conditions ship inside
			// the SDK itself; they are not host providers.
			return false
		}
	})
}
