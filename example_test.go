package sdk_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/atriumhq/sdk"
	"github.com/atriumhq/sdk/manifest"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/types"
	"github.com/atriumhq/sdk/version"
)

// Helper to create a host manager without logging
func newQuietHost() (sdk.Manager, error) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return sdk.New(
		sdk.WithLogger(logger),
		sdk.WithHostVersion(version.Current),
	)
}

// Helper to build a minimal manifest for a background plugin
func exampleManifest(name, ver string) *manifest.Manifest {
	return &manifest.Manifest{
		Name:        name,
		Version:     ver,
		Description: "Example plugin",
		Type:        manifest.TypeBackgroundService,
		Background:  "dist/worker.js",
	}
}

// ExampleNew demonstrates creating a manager and walking a plugin
// through its lifecycle.
func ExampleNew() {
	host, err := newQuietHost()
	if err != nil {
		log.Fatal(err)
	}
	defer host.Close()

	plug, err := sdk.NewPlugin(
		sdk.WithPluginName("markdown-notes"),
		sdk.WithPluginVersion("1.2.0"),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	ctrl, err := host.Install(ctx, plug, exampleManifest("markdown-notes", "1.2.0"))
	if err != nil {
		log.Fatal(err)
	}

	if err := host.Enable(ctx, "markdown-notes"); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s is %s\n", ctrl.Manifest().Name, ctrl.State())

	// Output: markdown-notes is enabled
}

// ExampleNewPlugin demonstrates building a plugin in code.
func ExampleNewPlugin() {
	plug, err := sdk.NewPlugin(
		sdk.WithPluginName("weather-widget"),
		sdk.WithPluginVersion("2.0.1"),
		sdk.WithPluginDescription("Shows the local forecast"),
		sdk.WithOnEnable(func(ctx context.Context, rt plugin.Runtime) error {
			return rt.Storage().Set(ctx, "enabled_at", time.Now().Unix())
		}),
		sdk.WithHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
			return types.NewHealthyStatus("forecast feed reachable")
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	d := plugin.ToDescriptor(plug)
	fmt.Printf("Plugin: %s v%s - %s\n", d.Name, d.Version, d.Description)
	fmt.Printf("enable hook: %t, health check: %t\n", d.HasEnable, d.HasHealthCheck)

	// Output:
	// Plugin: weather-widget v2.0.1 - Shows the local forecast
	// enable hook: true, health check: true
}

// ExampleManager_Health demonstrates querying a plugin's health through
// the manager.
func ExampleManager_Health() {
	host, err := newQuietHost()
	if err != nil {
		log.Fatal(err)
	}
	defer host.Close()

	plug, err := sdk.NewPlugin(
		sdk.WithPluginName("markdown-notes"),
		sdk.WithPluginVersion("1.2.0"),
		sdk.WithHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
			return types.NewHealthyStatus("notes folder reachable")
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := host.Install(ctx, plug, exampleManifest("markdown-notes", "1.2.0")); err != nil {
		log.Fatal(err)
	}
	if err := host.Enable(ctx, "markdown-notes"); err != nil {
		log.Fatal(err)
	}

	status, err := host.Health(ctx, "markdown-notes", time.Second)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %s\n", status.Status, status.Message)

	// Output: healthy: notes folder reachable
}

// ExampleManager_List demonstrates listing installed plugins.
func ExampleManager_List() {
	host, err := newQuietHost()
	if err != nil {
		log.Fatal(err)
	}
	defer host.Close()

	ctx := context.Background()
	for _, name := range []string{"weather-widget", "markdown-notes"} {
		plug, err := sdk.NewPlugin(
			sdk.WithPluginName(name),
			sdk.WithPluginVersion("1.0.0"),
		)
		if err != nil {
			log.Fatal(err)
		}
		if _, err := host.Install(ctx, plug, exampleManifest(name, "1.0.0")); err != nil {
			log.Fatal(err)
		}
	}

	for _, ctrl := range host.List() {
		fmt.Println(ctrl.Manifest().Name)
	}

	// Output:
	// markdown-notes
	// weather-widget
}

// This example is not meant to be run, just to show example usage in documentation
func Example() {
	host, err := newQuietHost()
	if err != nil {
		log.Fatal(err)
	}
	defer host.Close()

	// Build a plugin that tracks its own state
	plug, err := sdk.NewPlugin(
		sdk.WithPluginName("task-board"),
		sdk.WithPluginVersion("1.0.0"),
		sdk.WithOnInstall(func(ctx context.Context, rt plugin.Runtime) error {
			return rt.Storage().Set(ctx, "columns", []string{"todo", "doing", "done"})
		}),
		sdk.WithOnEnable(func(ctx context.Context, rt plugin.Runtime) error {
			_, err := rt.Storage().Get(ctx, "columns")
			return err
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := host.Install(ctx, plug, exampleManifest("task-board", "1.0.0")); err != nil {
		log.Fatal(err)
	}
	if err := host.Enable(ctx, "task-board"); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Plugin enabled successfully")
	// Output: Plugin enabled successfully
}

func init() {
	// Suppress logging output in examples
	log.SetOutput(os.Stderr)
}
