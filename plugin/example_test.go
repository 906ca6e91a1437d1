package plugin_test

import (
	"context"
	"fmt"
	"log"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/storage"
	"github.com/atriumhq/sdk/types"
)

// Example demonstrates building a plugin with lifecycle hooks.
func Example() {
	cfg := plugin.NewConfig()
	cfg.SetName("markdown-notes")
	cfg.SetVersion("1.2.0")
	cfg.SetDescription("Markdown note taking for the workspace")

	cfg.SetOnInstall(func(ctx context.Context, rt plugin.Runtime) error {
		fmt.Println("installing", rt.PluginName())
		return rt.Storage().Set(ctx, "note_count", 0)
	})
	cfg.SetOnEnable(func(ctx context.Context, rt plugin.Runtime) error {
		fmt.Println("enabled")
		return nil
	})
	cfg.SetHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
		return types.NewHealthyStatus("notes index loaded")
	})

	p, err := plugin.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	rt := plugin.NewRuntime(plugin.RuntimeConfig{
		PluginName: p.Name(),
		Bundle:     capability.Bundle{Storage: storage.NewMemory()},
	})

	ctx := context.Background()
	hooks := p.Hooks()

	if err := hooks.OnInstall(ctx, rt); err != nil {
		log.Fatal(err)
	}
	if err := hooks.OnEnable(ctx, rt); err != nil {
		log.Fatal(err)
	}

	status := hooks.HealthCheck(ctx, rt)
	fmt.Println("health:", status.Status)

	// Output:
	// installing markdown-notes
	// enabled
	// health: healthy
}

// Example_configSchema demonstrates declaring a configuration schema.
func Example_configSchema() {
	cfg := plugin.NewConfig()
	cfg.SetName("weather-widget")
	cfg.SetVersion("2.0.0")
	cfg.SetConfigSchema(schema.Object(map[string]schema.JSON{
		"city":  schema.String(),
		"units": schema.Enum("metric", "imperial"),
	}, "city"))

	p, err := plugin.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	s := p.ConfigSchema()

	err = s.Validate(map[string]any{"city": "Oslo", "units": "metric"})
	fmt.Println("valid config:", err == nil)

	err = s.Validate(map[string]any{"units": "metric"})
	fmt.Println("missing city accepted:", err == nil)

	// Output:
	// valid config: true
	// missing city accepted: false
}

// Example_descriptor demonstrates inspecting a plugin without invoking it.
func Example_descriptor() {
	cfg := plugin.NewConfig()
	cfg.SetName("quiet")
	cfg.SetVersion("1.0.0")
	cfg.SetOnUninstall(func(ctx context.Context, rt plugin.Runtime) error { return nil })

	p, err := plugin.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	d := p.Capabilities()
	fmt.Println("uninstall hook:", d.HasUninstall)
	fmt.Println("health check:", d.HasHealthCheck)

	// Output:
	// uninstall hook: true
	// health check: false
}
