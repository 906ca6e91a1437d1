package version

import (
	"log/slog"
	"os"
	"sort"
	"sync"
)

// EnvOverride is the environment variable consulted when the host does
// not advertise its version explicitly.
const EnvOverride = "ATRIUM_HOST_VERSION"

// Capability names shared by the detector, the polyfill installer, and
// the compatibility adapters.
const (
	FeatureContexts          = "contexts"
	FeatureEventSubscribe    = "events.subscribe"
	FeatureStorageNamespaces = "storage.namespaces"
	FeatureHealthChecks      = "health.checks"
	FeatureConfigSchemas     = "config.schemas"
	FeatureConditions        = "conditions"
)

// FeatureMinimums maps every capability the SDK knows how to probe to
// the oldest host version that ships it. The detector uses the table in
// both directions: a present capability implies at least its minimum
// version, and a resolved version implies which unprobed capabilities
// must exist.
func FeatureMinimums() map[string]string {
	return map[string]string{
		FeatureContexts:          "2.0.0",
		FeatureEventSubscribe:    "2.0.0",
		FeatureStorageNamespaces: "2.5.0",
		FeatureHealthChecks:      "3.0.0",
		FeatureConfigSchemas:     "3.0.0",
		FeatureConditions:        "3.1.0",
	}
}

// Probe checks whether one host capability is present. Checks must be
// side-effect free; a panicking check reads as "feature absent".
type Probe struct {
	// Feature is the capability name, e.g. FeatureContexts.
	Feature string

	// MinVersion is the lowest host version that ships the feature.
	MinVersion string

	// Check reports whether the capability is present. A nil check
	// reads as absent.
	Check func() bool
}

// ProbesFromLookup builds the standard probe set over a capability
// lookup function, typically backed by the host's capability registry.
func ProbesFromLookup(lookup func(feature string) bool) []Probe {
	mins := FeatureMinimums()
	features := make([]string, 0, len(mins))
	for f := range mins {
		features = append(features, f)
	}
	sort.Strings(features)

	probes := make([]Probe, 0, len(features))
	for _, f := range features {
		f := f // per-iteration copy; required while go.mod declares go < 1.22
		probes = append(probes, Probe{
			Feature:    f,
			MinVersion: mins[f],
			Check:      func() bool { return lookup(f) },
		})
	}
	return probes
}

// Config configures a Detector.
type Config struct {
	// Advertised is the version the host embeds at build time. When set
	// and parseable it wins over every other source.
	Advertised string

	// EnvVar names the environment override variable. Defaults to
	// EnvOverride.
	EnvVar string

	// Probes supply capability checks for hosts that advertise nothing.
	Probes []Probe

	// Logger receives detection diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Detector resolves the host's runtime version and capability set.
// Detection runs once, on first use; afterwards every method is
// read-only and safe for concurrent use. Construct one per host process
// and inject it wherever version decisions are made — detectors are
// deliberately not package globals so tests get a fresh instance each.
//
// Detection never fails: a host that advertises nothing, sets no
// override, and passes no probe is treated as the oldest supported
// version, which keeps every compatibility path enabled.
type Detector struct {
	cfg Config

	once     sync.Once
	version  string
	features map[string]bool
}

// NewDetector creates a detector from the given configuration.
func NewDetector(cfg Config) *Detector {
	if cfg.EnvVar == "" {
		cfg.EnvVar = EnvOverride
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Detector{cfg: cfg}
}

// HostVersion returns the detected host version in normalized
// three-component form.
func (d *Detector) HostVersion() string {
	d.detect()
	return d.version
}

// HasFeature reports whether the named host capability is available.
func (d *Detector) HasFeature(name string) bool {
	d.detect()
	return d.features[name]
}

// IsAtLeast reports whether the host is at version v or newer.
func (d *Detector) IsAtLeast(v string) bool {
	d.detect()
	return AtLeast(d.version, v)
}

// IsBefore reports whether the host is strictly older than v.
func (d *Detector) IsBefore(v string) bool {
	d.detect()
	return Before(d.version, v)
}

// Features returns a copy of the detected capability set.
func (d *Detector) Features() map[string]bool {
	d.detect()
	features := make(map[string]bool, len(d.features))
	for k, v := range d.features {
		features[k] = v
	}
	return features
}

// MissingFeatures returns the known capabilities the host lacks, sorted.
// The polyfill installer consumes this list directly.
func (d *Detector) MissingFeatures() []string {
	d.detect()
	var missing []string
	for feature, present := range d.features {
		if !present {
			missing = append(missing, feature)
		}
	}
	sort.Strings(missing)
	return missing
}

func (d *Detector) detect() {
	d.once.Do(func() {
		d.version = d.resolveVersion()
		d.features = d.resolveFeatures()
	})
}

// resolveVersion tries sources in priority order: the advertised
// version, the environment override, then capability inference.
func (d *Detector) resolveVersion() string {
	if d.cfg.Advertised != "" {
		if v, err := Normalize(d.cfg.Advertised); err == nil {
			return v
		}
		d.cfg.Logger.Warn("ignoring unparseable advertised version",
			slog.String("value", d.cfg.Advertised))
	}

	if env := os.Getenv(d.cfg.EnvVar); env != "" {
		if v, err := Normalize(env); err == nil {
			d.cfg.Logger.Info("host version taken from environment",
				slog.String("var", d.cfg.EnvVar),
				slog.String("version", v))
			return v
		}
		d.cfg.Logger.Warn("ignoring unparseable version override",
			slog.String("var", d.cfg.EnvVar),
			slog.String("value", env))
	}

	inferred := ""
	for _, p := range d.cfg.Probes {
		if !runProbe(p) {
			continue
		}
		v, err := Normalize(p.MinVersion)
		if err != nil {
			continue
		}
		if inferred == "" || AtLeast(v, inferred) {
			inferred = v
		}
	}
	if inferred != "" {
		d.cfg.Logger.Info("host version inferred from capabilities",
			slog.String("version", inferred))
		return inferred
	}

	d.cfg.Logger.Warn("host version undetectable, assuming oldest supported",
		slog.String("version", Oldest))
	return Oldest
}

// resolveFeatures combines probe results with version-implied
// availability for capabilities nobody probed.
func (d *Detector) resolveFeatures() map[string]bool {
	features := make(map[string]bool)
	probed := make(map[string]bool)
	for _, p := range d.cfg.Probes {
		features[p.Feature] = features[p.Feature] || runProbe(p)
		probed[p.Feature] = true
	}
	for feature, min := range FeatureMinimums() {
		if probed[feature] {
			continue
		}
		features[feature] = AtLeast(d.version, min)
	}
	return features
}

// runProbe treats a nil or panicking check as "feature absent";
// probing must never take the host down.
func runProbe(p Probe) (present bool) {
	if p.Check == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			present = false
		}
	}()
	return p.Check()
}
