// Package release implements the Releaser (C8): the decision table that
// turns a project's plan size, previous and current versions, and
// restrictions into a concrete version action, plus the engagement-mode
// orchestration (Dry/ChangelogOnly/Full) that carries the decision out.
package release

import (
	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/restriction"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/version"
)

// DecisionKind names one row of the C8 decision table.
type DecisionKind uint8

const (
	// NoChange: plan_size is Empty; curt_version stands.
	NoChange DecisionKind = iota
	// New: no prev_version, not locktags; curt is tagged forward.
	New
	// NewLocked: no prev_version, locktags; no tag, reported as no_change.
	NewLocked
	// Forward: target <= curt_version, not locktags; curt is tagged forward.
	Forward
	// ForwardLocked: target <= curt_version, locktags; no tag, reported as no_change.
	ForwardLocked
	// Bump: target > curt_version; target is written into the version source and tagged.
	Bump
)

// String renders the decision kind the way a release report names it.
func (k DecisionKind) String() string {
	switch k {
	case NoChange:
		return "no_change"
	case New:
		return "new"
	case NewLocked:
		return "new_locked"
	case Forward:
		return "forward"
	case ForwardLocked:
		return "forward_locked"
	case Bump:
		return "bump"
	default:
		return "unknown"
	}
}

// Tags reports whether this decision kind creates a new annotated tag.
func (k DecisionKind) Tags() bool {
	return k == New || k == Forward || k == Bump
}

// Writes reports whether this decision kind writes a new value into the
// project's in-tree version source.
func (k DecisionKind) Writes() bool {
	return k == Bump
}

// Decision is one project's outcome from the C8 decision table.
type Decision struct {
	Project *config.Project
	Kind    DecisionKind
	// Output is the version this decision settles on: curt for every
	// kind except Bump, where it is the newly computed target.
	Output version.VersionString
}

// Decide applies the C8 decision table (spec.md §4.8) for one project.
// FailedPoison is a plan-wide precondition the caller must check before
// calling Decide for any project; Decide itself never sees Size.Failure.
func Decide(proj *config.Project, hasPrev bool, prev, curt version.VersionString, planSize size.Size, locktags bool, restrictions *restriction.Set) (Decision, error) {
	const op = "release.Decide"

	if planSize == size.Empty {
		return Decision{Project: proj, Kind: NoChange, Output: curt}, nil
	}

	if !hasPrev {
		if locktags {
			return Decision{Project: proj, Kind: NewLocked, Output: curt}, nil
		}
		if _, err := restrictions.Check(curt); err != nil {
			return Decision{}, vperrors.RestrictionViolation(op, err.Error()).WithDetail("project", proj.ID)
		}
		return Decision{Project: proj, Kind: New, Output: curt}, nil
	}

	target := planSize.Apply(prev)
	if target.LessThanOrEqual(curt) {
		if locktags {
			return Decision{Project: proj, Kind: ForwardLocked, Output: curt}, nil
		}
		if _, err := restrictions.Check(curt); err != nil {
			return Decision{}, vperrors.RestrictionViolation(op, err.Error()).WithDetail("project", proj.ID)
		}
		return Decision{Project: proj, Kind: Forward, Output: curt}, nil
	}

	if _, err := restrictions.Check(target); err != nil {
		return Decision{}, vperrors.RestrictionViolation(op, err.Error()).WithDetail("project", proj.ID)
	}
	return Decision{Project: proj, Kind: Bump, Output: target}, nil
}
