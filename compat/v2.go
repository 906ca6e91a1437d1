package compat

import (
	"context"
	"fmt"

	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/plugin"
)

// Deprecation metadata for the 2.x bridged surfaces.
var (
	warnV2Initialize = deprecation.Warning{
		Feature:     "plugin.initialize-hook",
		Since:       "3.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "the OnInstall lifecycle hook",
	}
	warnV2Cleanup = deprecation.Warning{
		Feature:     "plugin.cleanup-hook",
		Since:       "3.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "the OnUninstall lifecycle hook",
	}
	warnV2Activate = deprecation.Warning{
		Feature:     "plugin.activate-hook",
		Since:       "3.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "the OnEnable lifecycle hook",
	}
	warnV2Deactivate = deprecation.Warning{
		Feature:     "plugin.deactivate-hook",
		Since:       "3.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "the OnDisable lifecycle hook",
	}
)

// v2Limitations describes what the 2.x bridge cannot deliver.
var v2Limitations = []string{
	"configuration changes are not delivered to 2.x plugins",
	"update notifications are not delivered",
	"health checks are not supported",
}

// V2Adapter bridges plugins written against the 2.x host contract.
// The mapping is a pure rename: Initialize, Cleanup, Activate and
// Deactivate become OnInstall, OnUninstall, OnEnable and OnDisable.
// 2.x plugins already take contexts and use canonical permissions, so
// no polyfills are required.
type V2Adapter struct {
	deprecations *deprecation.Manager
}

// NewV2Adapter creates the adapter for the 2.x contract. Bridged hooks
// report their use through dep; a nil dep disables runtime warnings.
func NewV2Adapter(dep *deprecation.Manager) *V2Adapter {
	return &V2Adapter{deprecations: dep}
}

// Pattern returns "2.x".
func (a *V2Adapter) Pattern() string {
	return "2.x"
}

// Adapt bridges a PluginV2 value into the current contract.
func (a *V2Adapter) Adapt(p any, targetVersion string) (*AdaptedPlugin, error) {
	var legacy *PluginV2
	switch v := p.(type) {
	case *PluginV2:
		legacy = v
	case PluginV2:
		legacy = &v
	default:
		return nil, fmt.Errorf("2.x adapter cannot adapt %T", p)
	}

	if legacy.Name == "" {
		return nil, fmt.Errorf("2.x plugin has no name")
	}

	var warnings []deprecation.Warning
	var hooks plugin.Hooks
	name := legacy.Name

	if legacy.Initialize != nil {
		warnings = append(warnings, warnV2Initialize)
		initialize := legacy.Initialize
		cfg := legacy.Config
		hooks.OnInstall = func(ctx context.Context, rt plugin.Runtime) error {
			a.warn(warnV2Initialize.Feature, name)
			return initialize(ctx, cfg)
		}
	}

	if legacy.Cleanup != nil {
		warnings = append(warnings, warnV2Cleanup)
		cleanup := legacy.Cleanup
		hooks.OnUninstall = func(ctx context.Context, rt plugin.Runtime) error {
			a.warn(warnV2Cleanup.Feature, name)
			return cleanup(ctx)
		}
	}

	if legacy.Activate != nil {
		warnings = append(warnings, warnV2Activate)
		activate := legacy.Activate
		hooks.OnEnable = func(ctx context.Context, rt plugin.Runtime) error {
			a.warn(warnV2Activate.Feature, name)
			return activate(ctx)
		}
	}

	if legacy.Deactivate != nil {
		warnings = append(warnings, warnV2Deactivate)
		deactivate := legacy.Deactivate
		hooks.OnDisable = func(ctx context.Context, rt plugin.Runtime) error {
			a.warn(warnV2Deactivate.Feature, name)
			return deactivate(ctx)
		}
	}

	if a.deprecations != nil {
		a.deprecations.RegisterAll(warnings)
	}

	b := newBridged(legacy.Name, legacy.Version, legacy.Description, hooks)
	b.result = &AdaptedPlugin{
		Plugin:      b,
		Warnings:    warnings,
		Limitations: v2Limitations,
	}
	return b.result, nil
}

func (a *V2Adapter) warn(feature, pluginName string) {
	if a.deprecations != nil {
		a.deprecations.Warn(feature, "plugin "+pluginName)
	}
}

var _ Adapter = (*V2Adapter)(nil)
