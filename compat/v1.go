package compat

import (
	"context"
	"fmt"

	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/version"
)

// Deprecation metadata for the 1.x bridged surfaces.
var (
	warnV1Init = deprecation.Warning{
		Feature:     "plugin.init-hook",
		Since:       "2.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "the OnInstall lifecycle hook",
		Reason:      "config-only init cannot participate in host lifecycle transitions",
	}
	warnV1Destroy = deprecation.Warning{
		Feature:     "plugin.destroy-hook",
		Since:       "2.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "the OnUninstall lifecycle hook",
	}
	warnV1DotPermissions = deprecation.Warning{
		Feature:     "permissions.dot-notation",
		Since:       "2.0.0",
		RemovedIn:   "4.0.0",
		Replacement: "canonical kebab-case permission tokens",
	}
)

// v1Limitations describes what the 1.x bridge cannot deliver.
var v1Limitations = []string{
	"enable and disable transitions are not delivered to 1.x plugins",
	"configuration changes after initialization are not delivered",
	"update notifications are not delivered",
	"health checks are not supported",
}

// V1Adapter bridges plugins written against the 1.x host contract.
// Init becomes OnInstall (with the construction-time config passed
// through) and Destroy becomes OnUninstall. The 1.x contract predates
// contexts and the subscribe-style event bus, so bridged plugins
// require those polyfills on hosts that lack them natively.
type V1Adapter struct {
	deprecations *deprecation.Manager
}

// NewV1Adapter creates the adapter for the 1.x contract. Bridged hooks
// report their use through dep; a nil dep disables runtime warnings.
func NewV1Adapter(dep *deprecation.Manager) *V1Adapter {
	return &V1Adapter{deprecations: dep}
}

// Pattern returns "1.x".
func (a *V1Adapter) Pattern() string {
	return "1.x"
}

// Adapt bridges a PluginV1 value into the current contract.
func (a *V1Adapter) Adapt(p any, targetVersion string) (*AdaptedPlugin, error) {
	var legacy *PluginV1
	switch v := p.(type) {
	case *PluginV1:
		legacy = v
	case PluginV1:
		legacy = &v
	default:
		return nil, fmt.Errorf("1.x adapter cannot adapt %T", p)
	}

	if legacy.Name == "" {
		return nil, fmt.Errorf("1.x plugin has no name")
	}

	var warnings []deprecation.Warning
	var hooks plugin.Hooks

	if legacy.Init != nil {
		warnings = append(warnings, warnV1Init)
		init := legacy.Init
		cfg := legacy.Config
		name := legacy.Name
		hooks.OnInstall = func(ctx context.Context, rt plugin.Runtime) error {
			a.warn(warnV1Init.Feature, name)
			return init(cfg)
		}
	}

	if legacy.Destroy != nil {
		warnings = append(warnings, warnV1Destroy)
		destroy := legacy.Destroy
		name := legacy.Name
		hooks.OnUninstall = func(ctx context.Context, rt plugin.Runtime) error {
			a.warn(warnV1Destroy.Feature, name)
			return destroy()
		}
	}

	// Permission translation happens once, here; the validator never
	// sees dot notation.
	if _, legacyTokens := TranslatePermissions(legacy.Permissions); len(legacyTokens) > 0 {
		warnings = append(warnings, warnV1DotPermissions)
		a.warn(warnV1DotPermissions.Feature, legacy.Name)
	}

	if a.deprecations != nil {
		a.deprecations.RegisterAll(warnings)
	}

	b := newBridged(legacy.Name, legacy.Version, legacy.Description, hooks)
	b.result = &AdaptedPlugin{
		Plugin: b,
		PolyfillsRequired: []string{
			version.FeatureContexts,
			version.FeatureEventSubscribe,
		},
		Warnings:    warnings,
		Limitations: v1Limitations,
	}
	return b.result, nil
}

func (a *V1Adapter) warn(feature, pluginName string) {
	if a.deprecations != nil {
		a.deprecations.Warn(feature, "plugin "+pluginName)
	}
}

var _ Adapter = (*V1Adapter)(nil)
