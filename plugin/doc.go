// Package plugin defines the contract between Atrium and its plugins.
//
// A plugin is a named, versioned component that hooks into host lifecycle
// transitions: install, uninstall, enable, disable, update and configuration
// changes, plus an optional health check. Every hook is optional; the host
// treats a missing hook as a no-op.
//
// # Creating a Plugin
//
// Plugins are created using the builder pattern with the Config type:
//
//	cfg := plugin.NewConfig()
//	cfg.SetName("markdown-notes")
//	cfg.SetVersion("1.2.0")
//	cfg.SetDescription("Markdown note taking for the workspace")
//
//	cfg.SetOnInstall(func(ctx context.Context, rt plugin.Runtime) error {
//	    return rt.Storage().Set(ctx, "installed_at", time.Now().Unix())
//	})
//	cfg.SetOnEnable(func(ctx context.Context, rt plugin.Runtime) error {
//	    rt.Logger().Info("notes plugin enabled")
//	    return nil
//	})
//	cfg.SetHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
//	    return types.NewHealthyStatus("notes index loaded")
//	})
//
//	p, err := plugin.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # The Runtime
//
// Hooks never talk to the host directly. They receive a Runtime carrying the
// capabilities granted to the plugin: storage isolated to the plugin, the
// event bus, an outbound HTTP client, the acting identity and a tagged
// logger. Capabilities the host did not grant are simply absent from the
// bundle behind the runtime.
//
// # Configuration Schemas
//
// A plugin may declare a schema for its configuration with SetConfigSchema.
// The host validates new configuration against it before OnConfigChange runs,
// so hooks only ever see configuration that already passed validation.
//
// # Descriptors
//
// Capabilities() reports which hooks a plugin declares. The descriptor is
// computed once at build time; the host relies on it to decide, for example,
// whether a plugin participates in health monitoring at all.
package plugin
