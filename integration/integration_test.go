package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/atriumhq/sdk"
	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/compat"
	"github.com/atriumhq/sdk/events"
	"github.com/atriumhq/sdk/lifecycle"
	"github.com/atriumhq/sdk/manifest"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/registry"
	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/storage"
	"github.com/atriumhq/sdk/types"
	"github.com/atriumhq/sdk/version"
)

// quietLogger keeps integration test output readable.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHost builds a Manager with quiet logging and an advertised host
// version, and closes it when the test ends.
func newHost(t *testing.T, opts ...sdk.Option) sdk.Manager {
	t.Helper()

	base := []sdk.Option{
		sdk.WithLogger(quietLogger()),
		sdk.WithHostVersion(version.Current),
	}
	host, err := sdk.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })
	return host
}

func backgroundManifest(name, ver string) *manifest.Manifest {
	return &manifest.Manifest{
		Name:        name,
		Version:     ver,
		Description: "Background sync for workspace notes",
		Type:        manifest.TypeBackgroundService,
		Background:  "dist/worker.js",
	}
}

// TestSDKPackageImports verifies all SDK packages can be imported together.
func TestSDKPackageImports(t *testing.T) {
	// This test ensures all packages compile together without conflicts.
	// If this test compiles and runs, all imports are working correctly.

	t.Run("plugin package", func(t *testing.T) {
		var _ plugin.Plugin
		var _ plugin.Runtime
		var _ plugin.Descriptor
	})

	t.Run("capability package", func(t *testing.T) {
		var _ capability.Storage
		var _ capability.Events
		var _ capability.Bundle
	})

	t.Run("schema package", func(t *testing.T) {
		s := schema.Object(map[string]schema.JSON{
			"folder": schema.String(),
		})
		assert.NotNil(t, s)
	})

	t.Run("manifest package", func(t *testing.T) {
		var _ manifest.Manifest
		var _ string = manifest.TypeBackgroundService
	})

	t.Run("types package", func(t *testing.T) {
		var _ types.HealthStatus
		var _ types.Identity
	})

	t.Run("lifecycle package", func(t *testing.T) {
		var _ lifecycle.State = lifecycle.StateEnabled
	})

	t.Run("compat package", func(t *testing.T) {
		var _ compat.PluginV1
		var _ compat.PluginV2
	})
}

// TestHostLifecycle walks a plugin through every state the host drives
// and verifies the instance registry sees it come and go.
func TestHostLifecycle(t *testing.T) {
	reg := registry.NewMemory()
	t.Cleanup(func() { _ = reg.Close() })

	host := newHost(t,
		sdk.WithRegistry(reg),
		sdk.WithEndpoint("host-1.internal:50051"),
	)

	var mu sync.Mutex
	var calls []string
	record := func(name string) plugin.HookFunc {
		return func(ctx context.Context, rt plugin.Runtime) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, name)
			return nil
		}
	}

	notes, err := sdk.NewPlugin(
		sdk.WithPluginName("markdown-notes"),
		sdk.WithPluginVersion("1.2.0"),
		sdk.WithPluginDescription("Keeps notes in Markdown files"),
		sdk.WithOnInstall(record("install")),
		sdk.WithOnEnable(record("enable")),
		sdk.WithOnDisable(record("disable")),
		sdk.WithOnUninstall(record("uninstall")),
	)
	require.NoError(t, err)

	ctx := context.Background()
	ctrl, err := host.Install(ctx, notes, backgroundManifest("markdown-notes", "1.2.0"))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateInstalled, ctrl.State())

	require.NoError(t, host.Enable(ctx, "markdown-notes"))
	assert.Equal(t, lifecycle.StateEnabled, ctrl.State())

	// Enabled plugins announce themselves to the instance registry
	instances, err := reg.Discover(ctx, "markdown-notes")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "host-1.internal:50051", instances[0].Endpoint)
	assert.Equal(t, lifecycle.StateEnabled.String(), instances[0].State)
	assert.NotEmpty(t, instances[0].InstanceID)

	// Disabling withdraws the registration
	require.NoError(t, host.Disable(ctx, "markdown-notes"))
	instances, err = reg.Discover(ctx, "markdown-notes")
	require.NoError(t, err)
	assert.Empty(t, instances)

	require.NoError(t, host.Uninstall(ctx, "markdown-notes"))
	require.NoError(t, host.Remove("markdown-notes"))

	_, err = host.Get("markdown-notes")
	assert.ErrorIs(t, err, sdk.ErrPluginNotFound)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"install", "enable", "disable", "uninstall"}, calls)
}

// TestRedisBackedHost swaps the default in-memory store for Redis and
// verifies plugin writes land namespaced in the shared hash.
func TestRedisBackedHost(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := storage.NewRedis(storage.RedisOptions{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	caps := capability.NewRegistry(quietLogger())
	require.NoError(t, caps.Register(capability.ProviderStorage, store))
	require.NoError(t, caps.Register(capability.ProviderEvents, events.NewInProc(quietLogger())))
	require.NoError(t, caps.Register(capability.ProviderHTTP, capability.NewClient(5*time.Second)))

	host := newHost(t, sdk.WithCapabilities(caps))
	ctx := context.Background()

	writeOwner := func(name string) plugin.HookFunc {
		return func(ctx context.Context, rt plugin.Runtime) error {
			return rt.Storage().Set(ctx, "owner", name)
		}
	}

	for _, name := range []string{"notes-sync", "board-sync"} {
		p, err := sdk.NewPlugin(
			sdk.WithPluginName(name),
			sdk.WithPluginVersion("2.1.0"),
			sdk.WithOnInstall(writeOwner(name)),
		)
		require.NoError(t, err)

		_, err = host.Install(ctx, p, backgroundManifest(name, "2.1.0"))
		require.NoError(t, err)
	}

	// Each plugin's write survives in Redis under its own namespace
	got, err := store.Get(ctx, "plugin:notes-sync:owner")
	require.NoError(t, err)
	assert.Equal(t, "notes-sync", got)

	got, err = store.Get(ctx, "plugin:board-sync:owner")
	require.NoError(t, err)
	assert.Equal(t, "board-sync", got)
}

// TestConcurrentInstalls exercises the manager's locking under parallel
// installs.
func TestConcurrentInstalls(t *testing.T) {
	t.Run("distinct names all land", func(t *testing.T) {
		host := newHost(t)
		ctx := context.Background()

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("widget-%d", i)
				p, err := sdk.NewPlugin(
					sdk.WithPluginName(name),
					sdk.WithPluginVersion("1.0.0"),
				)
				if err != nil {
					errs[i] = err
					return
				}
				_, errs[i] = host.Install(ctx, p, backgroundManifest(name, "1.0.0"))
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "install %d", i)
		}
		assert.Len(t, host.List(), n)
	})

	t.Run("same name races to one winner", func(t *testing.T) {
		host := newHost(t)
		ctx := context.Background()

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p, err := sdk.NewPlugin(
					sdk.WithPluginName("task-board"),
					sdk.WithPluginVersion("1.0.0"),
				)
				if err != nil {
					errs[i] = err
					return
				}
				_, errs[i] = host.Install(ctx, p, backgroundManifest("task-board", "1.0.0"))
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, sdk.ErrAlreadyInstalled)
			}
		}
		assert.Equal(t, 1, won, "exactly one install wins the name")
		assert.Len(t, host.List(), 1)
	})
}

// TestManagerClose verifies Close winds enabled plugins down and
// withdraws their registrations.
func TestManagerClose(t *testing.T) {
	reg := registry.NewMemory()
	t.Cleanup(func() { _ = reg.Close() })

	host, err := sdk.New(
		sdk.WithLogger(quietLogger()),
		sdk.WithHostVersion(version.Current),
		sdk.WithRegistry(reg),
	)
	require.NoError(t, err)

	ctx := context.Background()
	p, err := sdk.NewPlugin(
		sdk.WithPluginName("task-board"),
		sdk.WithPluginVersion("1.0.0"),
	)
	require.NoError(t, err)

	ctrl, err := host.Install(ctx, p, backgroundManifest("task-board", "1.0.0"))
	require.NoError(t, err)
	require.NoError(t, host.Enable(ctx, "task-board"))

	instances, err := reg.DiscoverAll(ctx)
	require.NoError(t, err)
	require.Len(t, instances, 1)

	require.NoError(t, host.Close())
	assert.Equal(t, lifecycle.StateDisabled, ctrl.State())

	// The registration is gone
	instances, err = reg.DiscoverAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, instances)

	// A closed manager refuses new installs
	other, err := sdk.NewPlugin(
		sdk.WithPluginName("alpha-sync"),
		sdk.WithPluginVersion("1.0.0"),
	)
	require.NoError(t, err)
	_, err = host.Install(ctx, other, backgroundManifest("alpha-sync", "1.0.0"))
	assert.ErrorIs(t, err, sdk.ErrManagerClosed)

	assert.NoError(t, host.Close(), "closing twice is a no-op")
}
