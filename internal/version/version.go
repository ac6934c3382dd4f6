// Package version provides the VersionString value type: a dotted
// integer triple with an optional trailing "-prerelease" tail. Parsing
// intentionally stops there — build metadata and full semver precedence
// rules are out of scope (spec.md Non-goals).
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// VersionString is an immutable (major, minor, patch[-prerelease]) value.
type VersionString struct {
	major, minor, patch uint64
	prerelease          string
}

var versionRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?$`)

// Zero is the zero version (0.0.0).
var Zero = VersionString{}

// New constructs a VersionString from its integer components.
func New(major, minor, patch uint64) VersionString {
	return VersionString{major: major, minor: minor, patch: patch}
}

// NewPrerelease constructs a VersionString with a prerelease tail.
func NewPrerelease(major, minor, patch uint64, prerelease string) VersionString {
	return VersionString{major: major, minor: minor, patch: patch, prerelease: prerelease}
}

// Parse parses a dotted integer triple with an optional leading "v" and
// an optional trailing "-prerelease" tail.
func Parse(s string) (VersionString, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: major: %v", ErrInvalidVersion, err)
	}
	minor, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: minor: %v", ErrInvalidVersion, err)
	}
	patch, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: patch: %v", ErrInvalidVersion, err)
	}
	return VersionString{major: major, minor: minor, patch: patch, prerelease: m[4]}, nil
}

// MustParse parses s and panics on error. Only for compile-time-known-good strings.
func MustParse(s string) VersionString {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Major returns the major component.
func (v VersionString) Major() uint64 { return v.major }

// Minor returns the minor component.
func (v VersionString) Minor() uint64 { return v.minor }

// Patch returns the patch component.
func (v VersionString) Patch() uint64 { return v.patch }

// Prerelease returns the prerelease tail, or "" if none.
func (v VersionString) Prerelease() string { return v.prerelease }

// IsPrerelease reports whether v carries a prerelease tail.
func (v VersionString) IsPrerelease() bool { return v.prerelease != "" }

// IsZero reports whether v is the zero version.
func (v VersionString) IsZero() bool {
	return v.major == 0 && v.minor == 0 && v.patch == 0 && v.prerelease == ""
}

// String renders the version without a "v" prefix.
func (v VersionString) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.major, v.minor, v.patch)
	if v.prerelease != "" {
		sb.WriteString("-")
		sb.WriteString(v.prerelease)
	}
	return sb.String()
}

// TagString renders the version with a "v" prefix, as used in git tags.
func (v VersionString) TagString() string {
	return "v" + v.String()
}

// Compare orders versions lexicographically on (major, minor, patch);
// when both sides carry a prerelease tail, it breaks ties lexically on
// that tail. When only one side has a tail, the two compare equal: no
// release-over-prerelease precedence is applied.
func (v VersionString) Compare(other VersionString) int {
	if v.major != other.major {
		return cmpUint(v.major, other.major)
	}
	if v.minor != other.minor {
		return cmpUint(v.minor, other.minor)
	}
	if v.patch != other.patch {
		return cmpUint(v.patch, other.patch)
	}
	if v.prerelease == other.prerelease {
		return 0
	}
	if v.prerelease == "" || other.prerelease == "" {
		return 0
	}
	return strings.Compare(v.prerelease, other.prerelease)
}

func cmpUint(a, b uint64) int {
	if a < b {
		return -1
	}
	return 1
}

// LessThan reports whether v < other.
func (v VersionString) LessThan(other VersionString) bool { return v.Compare(other) < 0 }

// LessThanOrEqual reports whether v <= other.
func (v VersionString) LessThanOrEqual(other VersionString) bool { return v.Compare(other) <= 0 }

// GreaterThan reports whether v > other.
func (v VersionString) GreaterThan(other VersionString) bool { return v.Compare(other) > 0 }

// GreaterThanOrEqual reports whether v >= other.
func (v VersionString) GreaterThanOrEqual(other VersionString) bool { return v.Compare(other) >= 0 }

// Equal reports whether v and other compare equal.
func (v VersionString) Equal(other VersionString) bool { return v.Compare(other) == 0 }
