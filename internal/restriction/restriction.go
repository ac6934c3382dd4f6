// Package restriction evaluates a project's configured restriction
// strings — semver constraint expressions such as ">=1.0.0, <2.0.0" —
// against a candidate version. Restrictions bound what a project's next
// version is allowed to become; a release whose output version fails a
// restriction is rejected with a restriction-violation error rather than
// silently written out of range.
package restriction

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/versionplan/versionplan/internal/version"
)

// Set is a parsed collection of restriction constraints for one project.
type Set struct {
	constraints []*semver.Constraints
	raw         []string
}

// Parse compiles a project's restriction strings into a Set. Each
// string is an independent constraint; a candidate must satisfy all of
// them.
func Parse(restrictions []string) (*Set, error) {
	s := &Set{raw: restrictions}
	for _, r := range restrictions {
		c, err := semver.NewConstraint(r)
		if err != nil {
			return nil, fmt.Errorf("invalid restriction %q: %w", r, err)
		}
		s.constraints = append(s.constraints, c)
	}
	return s, nil
}

// Check reports whether candidate satisfies every restriction in the
// set. An empty set always passes.
func (s *Set) Check(candidate version.VersionString) (bool, error) {
	if s == nil || len(s.constraints) == 0 {
		return true, nil
	}
	sv, err := semver.NewVersion(candidate.String())
	if err != nil {
		return false, fmt.Errorf("candidate %q is not valid semver: %w", candidate, err)
	}
	for i, c := range s.constraints {
		if !c.Check(sv) {
			return false, fmt.Errorf("candidate %s violates restriction %q", candidate, s.raw[i])
		}
	}
	return true, nil
}

// Strings returns the original restriction expressions.
func (s *Set) Strings() []string {
	if s == nil {
		return nil
	}
	return s.raw
}
