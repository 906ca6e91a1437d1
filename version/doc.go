// Package version resolves the Atrium host's runtime version and
// capability set, and provides the token and pattern matching rules used
// across the SDK.
//
// Version tokens are dotted numeric strings compared component by
// component; missing components count as zero, so "1.2" equals "1.2.0".
// Patterns are either an exact token or a major wildcard like "1.x",
// which matches every 1.* version:
//
//	version.Matches("1.x", "1.9.3") // true
//	version.Matches("1.x", "2.0.0") // false
//
// The Detector resolves the host version from, in priority order, an
// explicitly advertised version, the ATRIUM_HOST_VERSION environment
// override, and capability probing. Detection cannot fail: an opaque
// host is treated as the oldest supported version so every
// compatibility path stays enabled.
//
//	det := version.NewDetector(version.Config{Advertised: version.Current})
//	if det.IsBefore("2.0.0") {
//	    // arrange polyfills for a 1.x host
//	}
package version
