// Package manifest defines the declarative plugin descriptor and its
// validation rules. Manifests describe a plugin's identity, entry points,
// permissions and host surface contributions.
package manifest

// Plugin types the host recognizes.
const (
	TypeDashboardWidget   = "dashboard-widget"
	TypeCLITool           = "cli-tool"
	TypeAPIExtension      = "api-extension"
	TypeBackgroundService = "background-service"
)

// CurrentManifestVersion is the manifest format version this SDK writes
// and validates. Manifests that omit manifest_version are treated as
// current.
const CurrentManifestVersion = 3

// CanonicalPermissions is the fixed vocabulary of permission tokens a
// manifest may request. Anything else is either a legacy dot-notation
// token (a validation error; the compatibility adapter translates those
// before validation) or an unknown token (a warning).
var CanonicalPermissions = []string{
	"network-access",
	"storage-read",
	"storage-write",
	"filesystem-access",
	"notifications",
	"clipboard-read",
	"clipboard-write",
	"geolocation",
	"camera",
	"microphone",
	"calendar",
	"contacts",
}

// Manifest represents a plugin.yaml descriptor.
// It is a value object: validation and the rest of the SDK read it but
// never modify it.
type Manifest struct {
	// ManifestVersion is the manifest format version. Zero means the
	// author omitted it and the current version is assumed.
	ManifestVersion int `yaml:"manifest_version,omitempty" json:"manifest_version,omitempty"`

	// Identity
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Type        string `yaml:"type" json:"type"`

	// Permissions lists the canonical permission tokens the plugin requests.
	Permissions []string `yaml:"permissions,omitempty" json:"permissions,omitempty"`

	// Entry points. At least one must be declared.
	Main       string `yaml:"main,omitempty" json:"main,omitempty"`
	Web        string `yaml:"web,omitempty" json:"web,omitempty"`
	Background string `yaml:"background,omitempty" json:"background,omitempty"`

	// DashboardWidget configures the widget a dashboard-widget plugin
	// contributes. Required when Type is "dashboard-widget".
	DashboardWidget *DashboardWidget `yaml:"dashboard_widget,omitempty" json:"dashboard_widget,omitempty"`

	// Pages lists workspace pages the plugin contributes.
	Pages []Page `yaml:"pages,omitempty" json:"pages,omitempty"`

	// Commands lists CLI commands the plugin contributes.
	Commands []Command `yaml:"commands,omitempty" json:"commands,omitempty"`

	// ExternalServices lists remote services the plugin talks to.
	ExternalServices []ExternalService `yaml:"external_services,omitempty" json:"external_services,omitempty"`

	// ConfigSchema is an optional JSON-Schema-shaped description of the
	// plugin's configuration, as decoded from YAML.
	ConfigSchema map[string]any `yaml:"config_schema,omitempty" json:"config_schema,omitempty"`
}

// DashboardWidget describes the widget block of a dashboard-widget plugin.
type DashboardWidget struct {
	Name string `yaml:"name" json:"name"`

	// Size is the grid footprint, e.g. "2x2".
	Size string `yaml:"size,omitempty" json:"size,omitempty"`

	// Source is the component entry rendered into the widget.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// RefreshInterval is the widget refresh period in seconds.
	RefreshInterval int `yaml:"refresh_interval,omitempty" json:"refresh_interval,omitempty"`

	// When is an optional CEL condition gating whether the widget is shown.
	When string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Page describes a workspace page the plugin contributes.
type Page struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
	Icon string `yaml:"icon,omitempty" json:"icon,omitempty"`

	// When is an optional CEL condition gating whether the page is shown.
	When string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Command describes a CLI command the plugin contributes.
type Command struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Usage       string `yaml:"usage,omitempty" json:"usage,omitempty"`

	// When is an optional CEL condition gating whether the command is available.
	When string `yaml:"when,omitempty" json:"when,omitempty"`
}

// ExternalService describes a remote service the plugin depends on.
type ExternalService struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`

	// Scopes lists OAuth scopes or equivalent grants the service needs.
	Scopes []string `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// HasEntryPoint reports whether at least one entry point is declared.
func (m *Manifest) HasEntryPoint() bool {
	return m.Main != "" || m.Web != "" || m.Background != ""
}
