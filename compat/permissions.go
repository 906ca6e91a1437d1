package compat

import (
	"strings"
	"sync"

	"github.com/atriumhq/sdk/deprecation"
)

// permissionAliases maps legacy dot-notation permission tokens to their
// canonical kebab-case equivalents.
var (
	permissionAliases = map[string]string{
		"network.access":    "network-access",
		"storage.read":      "storage-read",
		"storage.write":     "storage-write",
		"filesystem.access": "filesystem-access",
		"clipboard.read":    "clipboard-read",
		"clipboard.write":   "clipboard-write",
	}
	permissionMu sync.RWMutex
)

// RegisterPermissionAlias adds or replaces a translation from a legacy
// permission token to its canonical form. Lookups are case-insensitive
// on the legacy side.
func RegisterPermissionAlias(legacy, canonical string) {
	permissionMu.Lock()
	defer permissionMu.Unlock()

	permissionAliases[strings.ToLower(legacy)] = canonical
}

// PermissionAlias returns the canonical form of a legacy permission
// token, if one is registered.
func PermissionAlias(legacy string) (string, bool) {
	permissionMu.RLock()
	defer permissionMu.RUnlock()

	canonical, ok := permissionAliases[strings.ToLower(legacy)]
	return canonical, ok
}

// TranslatePermissions converts a permission list that may contain
// legacy dot-notation tokens into canonical form. It returns the
// canonical list (order preserved, already-canonical tokens untouched)
// and the legacy tokens that were translated.
//
// Dotted tokens without a registered alias fall back to replacing dots
// with dashes, so a host that extended the 1.x vocabulary keeps
// working; unknown tokens surface later as validator warnings either
// way.
func TranslatePermissions(perms []string) (canonical []string, legacy []string) {
	if len(perms) == 0 {
		return nil, nil
	}

	canonical = make([]string, 0, len(perms))
	for _, p := range perms {
		if alias, ok := PermissionAlias(p); ok {
			canonical = append(canonical, alias)
			legacy = append(legacy, p)
			continue
		}
		if strings.Contains(p, ".") {
			canonical = append(canonical, strings.ReplaceAll(p, ".", "-"))
			legacy = append(legacy, p)
			continue
		}
		canonical = append(canonical, p)
	}
	return canonical, legacy
}

// TranslateManifestPermissions canonicalizes the permission list of a
// 1.x manifest before it reaches the validator, recording one
// deprecation use against dep when legacy tokens were present. The
// input slice is not modified. A nil dep translates without warning.
func TranslateManifestPermissions(perms []string, pluginName string, dep *deprecation.Manager) []string {
	canonical, legacy := TranslatePermissions(perms)
	if len(legacy) > 0 && dep != nil {
		dep.Register(warnV1DotPermissions)
		dep.Warn(warnV1DotPermissions.Feature, "manifest "+pluginName)
	}
	return canonical
}
