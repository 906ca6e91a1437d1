package deprecation

import "strings"

// Warning describes one deprecated API surface. Entries are registered
// in a Manager's catalog so usage sites only need the feature name.
type Warning struct {
	// Feature identifies the deprecated surface, e.g. "plugin.init-hook".
	Feature string `json:"feature"`

	// Since is the host version that deprecated the surface.
	Since string `json:"deprecated_since,omitempty"`

	// RemovedIn is the host version that will drop the surface, when
	// scheduled.
	RemovedIn string `json:"removed_in,omitempty"`

	// Replacement names the surface to migrate to.
	Replacement string `json:"replacement,omitempty"`

	// Reason explains why the surface was deprecated.
	Reason string `json:"reason,omitempty"`
}

// Message renders the console line for one use of the deprecated
// surface. Clauses for unset fields are omitted:
//
//	[DEPRECATED] plugin.init-hook is deprecated since v2.0.0 and will be
//	removed in v4.0.0. Use OnInstall instead. Reason: hooks receive a
//	runtime context (Context: plugin weather-widget)
func (w Warning) Message(contextInfo string) string {
	var b strings.Builder
	b.WriteString("[DEPRECATED] ")
	b.WriteString(w.Feature)
	b.WriteString(" is deprecated")
	if w.Since != "" {
		b.WriteString(" since v")
		b.WriteString(w.Since)
	}
	if w.RemovedIn != "" {
		b.WriteString(" and will be removed in v")
		b.WriteString(w.RemovedIn)
	}
	if w.Replacement != "" {
		b.WriteString(". Use ")
		b.WriteString(w.Replacement)
		b.WriteString(" instead")
	}
	if w.Reason != "" {
		b.WriteString(". Reason: ")
		b.WriteString(w.Reason)
	}
	if contextInfo != "" {
		b.WriteString(" (Context: ")
		b.WriteString(contextInfo)
		b.WriteString(")")
	}
	return b.String()
}
