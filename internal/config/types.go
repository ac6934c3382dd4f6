// Package config provides the monorepo release-planner's configuration
// schema: the project list, their coverage globs, size rules, and
// dependency graph. The file format and its loader are an external
// collaborator per spec.md §1 — this package only defines the shape the
// rest of the planner depends on, plus a viper-backed default loader.
package config

import (
	"path"
	"strings"

	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/version"
)

// ProjectID stably names a project for the lifetime of the repo.
type ProjectID string

// SizeMapper converts an incoming upstream Size into a downstream Size
// along one dependency edge. A nil or empty table converts everything
// to size.Empty (the edge contributes no bump); IdentitySizeMapper
// passes every size through unchanged.
type SizeMapper map[size.Size]size.Size

// IdentitySizeMapper returns a mapper where every size maps to itself.
func IdentitySizeMapper() SizeMapper {
	return SizeMapper{
		size.Empty:   size.Empty,
		size.None:    size.None,
		size.Patch:   size.Patch,
		size.Minor:   size.Minor,
		size.Major:   size.Major,
		size.Failure: size.Failure,
	}
}

// Convert maps in to the downstream size this edge produces. An
// unmapped input converts to size.Empty, i.e. "dropped."
func (m SizeMapper) Convert(in size.Size) size.Size {
	if m == nil {
		return size.Empty
	}
	out, ok := m[in]
	if !ok {
		return size.Empty
	}
	return out
}

// DependencyEdge describes how an upstream project's bump propagates to
// one of its downstream dependents.
type DependencyEdge struct {
	Size SizeMapper
}

// Project is the read-only, per-run description of one independently
// versioned unit in the repo.
type Project struct {
	ID   ProjectID
	Name string
	Root string

	Covers   []string
	Excludes []string

	Depends map[ProjectID]DependencyEdge

	SizeRules       map[string]size.Size
	DefaultSizeRule size.Size

	// TagPrefix is nil when the project participates in no tags at all.
	TagPrefix          *string
	TagPrefixSeparator string
	TagMajors          []uint64

	Labels map[string]struct{}

	Restrictions []string

	ChangelogPath *string
	VersionSource VersionSourceLocator
}

// VersionSourceLocator names where in a file the project's version lives.
type VersionSourceLocator struct {
	File string
	// Pattern is a regex with exactly one capture group spanning the
	// version text, used for line-oriented sources (e.g. a Go const).
	Pattern string
	// JSONField is a dotted field path into a JSON document (e.g.
	// "version" or "package.version"), used for JSON sources. Mutually
	// exclusive with Pattern; if both are empty the project has no
	// in-tree version source to write.
	JSONField string
}

// HasLabel reports whether the project carries the given label.
func (p *Project) HasLabel(label string) bool {
	_, ok := p.Labels[label]
	return ok
}

// SizeFor returns the configured size for a conventional-commit kind,
// falling back to the project's default size rule.
func (p *Project) SizeFor(kind string) size.Size {
	if s, ok := p.SizeRules[kind]; ok {
		return s
	}
	return p.DefaultSizeRule
}

// Covered reports whether path is inside this project's coverage: it
// matches at least one Covers glob and no Excludes glob.
func (p *Project) Covered(filePath string) bool {
	excluded := false
	for _, pat := range p.Excludes {
		if globMatch(pat, filePath) {
			excluded = true
			break
		}
	}
	if excluded {
		return false
	}
	for _, pat := range p.Covers {
		if globMatch(pat, filePath) {
			return true
		}
	}
	return false
}

// globMatch supports plain path.Match globs plus a "prefix/**" suffix
// meaning "prefix and everything below it," since path.Match alone has
// no recursive-directory wildcard.
func globMatch(pattern, name string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if rest, ok := strings.CutSuffix(pattern, "/**"); ok {
		return name == rest || strings.HasPrefix(name, rest+"/")
	}
	if pattern == "**" {
		return true
	}
	ok, err := path.Match(pattern, name)
	if err == nil && ok {
		return true
	}
	// Directory-style pattern without a wildcard: treat as a prefix.
	if !strings.ContainsAny(pattern, "*?[") {
		return name == pattern || strings.HasPrefix(name, pattern+"/")
	}
	return false
}

// TagPatterns computes the fnmatch patterns this project's tags must
// match, per spec.md §3: no TagPrefix means the project participates in
// no tags at all.
func (p *Project) TagPatterns() []string {
	if p.TagPrefix == nil {
		return nil
	}
	sep := p.TagPrefixSeparator
	prefix := *p.TagPrefix
	var lead string
	if prefix == "" {
		lead = ""
	} else {
		lead = prefix + sep
	}
	if len(p.TagMajors) == 0 {
		return []string{lead + "v*"}
	}
	patterns := make([]string, 0, len(p.TagMajors))
	for _, major := range p.TagMajors {
		patterns = append(patterns, lead+"v"+uitoa(major)+".*")
	}
	return patterns
}

// TagNameFor renders the literal tag name this project's Releaser
// should create for v, the non-wildcard counterpart to TagPatterns. ok
// is false when the project has no TagPrefix and so opts out of tagging
// entirely.
func (p *Project) TagNameFor(v version.VersionString) (name string, ok bool) {
	if p.TagPrefix == nil {
		return "", false
	}
	sep := p.TagPrefixSeparator
	prefix := *p.TagPrefix
	var lead string
	if prefix != "" {
		lead = prefix + sep
	}
	return lead + "v" + v.String(), true
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
