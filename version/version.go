package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// Current is the host contract version this SDK release tracks.
	// Hosts embedding the SDK advertise it unless configured otherwise.
	Current = "3.2.0"

	// Oldest is the oldest host contract version the SDK still bridges.
	// The detector falls back to it when nothing about the host can be
	// determined, so compatibility handling stays maximally conservative.
	Oldest = "1.0.0"
)

// parse turns a dotted numeric token into a comparable version.
// Missing components count as zero, so "1.2" and "1.2.0" are equal.
func parse(v string) (*semver.Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return sv, nil
}

// Valid reports whether v parses as a version token.
func Valid(v string) bool {
	_, err := parse(v)
	return err == nil
}

// Normalize returns the canonical three-component form of a token
// ("1.2" becomes "1.2.0"). It returns an error for unparseable input.
func Normalize(v string) (string, error) {
	sv, err := parse(v)
	if err != nil {
		return "", err
	}
	return sv.String(), nil
}

// Compare returns -1, 0, or 1 when a is less than, equal to, or greater
// than b. Components are compared major first, then minor, then patch.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := parse(b)
	if err != nil {
		return 0, err
	}
	return av.Compare(bv), nil
}

// AtLeast reports whether v is min or newer. Unparseable input reads
// as false rather than an error so callers can chain checks.
func AtLeast(v, min string) bool {
	vv, err := parse(v)
	if err != nil {
		return false
	}
	mv, err := parse(min)
	if err != nil {
		return false
	}
	return !vv.LessThan(mv)
}

// Before reports whether v is strictly older than limit.
func Before(v, limit string) bool {
	vv, err := parse(v)
	if err != nil {
		return false
	}
	lv, err := parse(limit)
	if err != nil {
		return false
	}
	return vv.LessThan(lv)
}

// Matches reports whether a version token satisfies a pattern.
// A pattern is either an exact token ("1.4.0", matching only that
// version) or a major wildcard ("1.x", matching every token whose major
// component is 1). Unparseable patterns or versions never match.
func Matches(pattern, v string) bool {
	sv, err := parse(v)
	if err != nil {
		return false
	}

	if isWildcard(pattern) {
		c, err := semver.NewConstraint(pattern)
		if err != nil {
			return false
		}
		return c.Check(sv)
	}

	pv, err := parse(pattern)
	if err != nil {
		return false
	}
	return pv.Equal(sv)
}

// isWildcard recognizes major patterns like "1.x". The leading component
// must be numeric so tokens such as "x.x" stay invalid.
func isWildcard(pattern string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if !strings.HasSuffix(p, ".x") {
		return false
	}
	_, err := strconv.ParseUint(strings.SplitN(p, ".", 2)[0], 10, 64)
	return err == nil
}
