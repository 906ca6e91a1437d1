package manifest

import (
	"fmt"
	"strings"

	"github.com/atriumhq/sdk/version"
)

// ValidationResult is the outcome of validating a manifest.
// Errors block loading; warnings do not.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

var validTypes = map[string]bool{
	TypeDashboardWidget:   true,
	TypeCLITool:           true,
	TypeAPIExtension:      true,
	TypeBackgroundService: true,
}

var canonicalPermissionSet = func() map[string]bool {
	set := make(map[string]bool, len(CanonicalPermissions))
	for _, p := range CanonicalPermissions {
		set[p] = true
	}
	return set
}()

// Validate checks a manifest for structural and semantic problems.
// It is pure: no I/O, deterministic, and never modifies the manifest.
//
// A nil manifest is invalid. Unknown permission tokens produce warnings;
// legacy dot-notation tokens produce errors, because dot notation belongs
// to the 1.x contract and must be translated by the compatibility adapter
// before validation.
func Validate(m *Manifest) ValidationResult {
	var r ValidationResult

	if m == nil {
		r.addError("manifest is nil")
		return r
	}

	// Identity fields, one error each.
	if m.Name == "" {
		r.addError("name is required")
	}
	if m.Version == "" {
		r.addError("version is required")
	} else if !version.Valid(m.Version) {
		r.addError("version %q is not a valid version token", m.Version)
	}
	if m.Description == "" {
		r.addError("description is required")
	}
	if m.Type == "" {
		r.addError("type is required")
	} else if !validTypes[m.Type] {
		r.addError("unknown plugin type %q", m.Type)
	}

	if m.ManifestVersion < 0 || m.ManifestVersion > CurrentManifestVersion {
		r.addError("unsupported manifest_version %d", m.ManifestVersion)
	}

	// Permissions.
	for _, p := range m.Permissions {
		if strings.Contains(p, ".") {
			r.addError("permission %q uses legacy dot notation; canonical tokens are kebab-case", p)
			continue
		}
		if !canonicalPermissionSet[p] {
			r.addWarning("unknown permission %q", p)
		}
	}

	// Type-specific structure.
	switch m.Type {
	case TypeDashboardWidget:
		if m.DashboardWidget == nil {
			r.addError("dashboard-widget type requires a dashboard_widget block")
		}
	case TypeCLITool:
		if len(m.Commands) == 0 {
			r.addWarning("cli-tool type should include commands configuration")
		}
	}

	// Nested collections, per item.
	for i, p := range m.Pages {
		if p.Name == "" {
			r.addError("pages[%d]: name is required", i)
		}
		if p.Path == "" {
			r.addError("pages[%d]: path is required", i)
		}
		if err := CompileWhen(p.When); err != nil {
			r.addError("pages[%d]: %v", i, err)
		}
	}
	for i, s := range m.ExternalServices {
		if s.Name == "" {
			r.addError("external_services[%d]: name is required", i)
		}
		if s.URL == "" {
			r.addError("external_services[%d]: url is required", i)
		}
	}
	for i, c := range m.Commands {
		if c.Name == "" {
			r.addError("commands[%d]: name is required", i)
		}
		if err := CompileWhen(c.When); err != nil {
			r.addError("commands[%d]: %v", i, err)
		}
	}
	if m.DashboardWidget != nil {
		if err := CompileWhen(m.DashboardWidget.When); err != nil {
			r.addError("dashboard_widget: %v", err)
		}
	}

	// Entry points.
	if !m.HasEntryPoint() {
		r.addError("at least one entry point (main, web, or background) is required")
	}

	r.Valid = len(r.Errors) == 0
	return r
}
