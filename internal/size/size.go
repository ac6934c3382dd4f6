// Package size implements the bump-size lattice: a totally ordered enum
// used to express how much a single commit, PR, or project changed.
// Empty means "no change"; Failure is poison — it always wins a Max
// comparison but is never itself applied to a version.
package size

import (
	"fmt"

	"github.com/versionplan/versionplan/internal/version"
)

// Size is one step on the Empty < None < Patch < Minor < Major < Failure lattice.
type Size uint8

const (
	// Empty means no applicable change was found.
	Empty Size = iota
	// None means a change was found but it does not warrant a version bump.
	None
	// Patch means a backwards-compatible bug fix.
	Patch
	// Minor means a backwards-compatible feature addition.
	Minor
	// Major means a breaking change.
	Major
	// Failure means a commit's conventional form could not be parsed; it
	// poisons the release but contributes no magnitude of its own.
	Failure
)

// String renders the Size the way conventional-commit tooling names it.
func (s Size) String() string {
	switch s {
	case Empty:
		return "empty"
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("size(%d)", uint8(s))
	}
}

// Parse parses a Size from its canonical lowercase name.
func Parse(s string) (Size, bool) {
	switch s {
	case "empty":
		return Empty, true
	case "none":
		return None, true
	case "patch":
		return Patch, true
	case "minor":
		return Minor, true
	case "major":
		return Major, true
	case "failure":
		return Failure, true
	default:
		return Empty, false
	}
}

// Max returns the larger of a and b under the lattice order; Failure
// always wins, matching "Failure wins all max comparisons."
func Max(a, b Size) Size {
	if a > b {
		return a
	}
	return b
}

// MaxAll reduces a slice of sizes with Max, defaulting to Empty.
func MaxAll(sizes ...Size) Size {
	out := Empty
	for _, s := range sizes {
		out = Max(out, s)
	}
	return out
}

// Apply returns the version obtained by bumping v by s. Empty, None, and
// Failure are never applied and return v unchanged; callers must check
// for those cases before calling Apply if they need to distinguish
// "no change" from "bumped to the same value."
func (s Size) Apply(v version.VersionString) version.VersionString {
	switch s {
	case Major:
		return version.New(v.Major()+1, 0, 0)
	case Minor:
		return version.New(v.Major(), v.Minor()+1, 0)
	case Patch:
		return version.New(v.Major(), v.Minor(), v.Patch()+1)
	default:
		return v
	}
}
