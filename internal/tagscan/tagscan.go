// Package tagscan implements the TagScanner (C2): for each project, it
// enumerates tags matching that project's fnmatch patterns and resolves
// each to its peeled commit and parsed version.
package tagscan

import (
	"context"
	"sort"
	"strings"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/vcs"
	"github.com/versionplan/versionplan/internal/version"
)

// Resolved pairs a tag with the version it was parsed as.
type Resolved struct {
	Tag     vcs.TagName
	Version version.VersionString
}

// Index maps each project to the tags found at each commit it owns.
type Index map[config.ProjectID]map[vcs.CommitOID][]Resolved

// Scan builds a tag index for every project that participates in
// tagging (has a non-nil TagPrefix).
func Scan(ctx context.Context, repo vcs.Repository, projects []*config.Project) (Index, error) {
	const op = "tagscan.Scan"

	idx := make(Index)
	for _, p := range projects {
		patterns := p.TagPatterns()
		if patterns == nil {
			continue
		}
		for _, pattern := range patterns {
			tags, err := repo.ListTags(ctx, pattern)
			if err != nil {
				return nil, vperrors.VCSIOWrap(err, op, "failed to list tags for pattern "+pattern)
			}
			for _, tag := range tags {
				v, ok := parseTagVersion(string(tag), p)
				if !ok {
					continue
				}
				oid, err := repo.PeelTag(ctx, tag)
				if err != nil {
					return nil, vperrors.TagResolveWrap(err, op, "failed to peel tag "+string(tag))
				}
				if idx[p.ID] == nil {
					idx[p.ID] = make(map[vcs.CommitOID][]Resolved)
				}
				idx[p.ID][oid] = append(idx[p.ID][oid], Resolved{Tag: tag, Version: v})
			}
		}
	}
	return idx, nil
}

// parseTagVersion strips a project's configured prefix/separator and a
// single leading v/V, then parses the remainder as a VersionString.
// Tags that don't parse as three dotted integers afterward are dropped
// (spec.md §4.2).
func parseTagVersion(tag string, p *config.Project) (version.VersionString, bool) {
	rest := tag
	if p.TagPrefix != nil && *p.TagPrefix != "" {
		lead := *p.TagPrefix + p.TagPrefixSeparator
		if !strings.HasPrefix(rest, lead) {
			return version.Zero, false
		}
		rest = strings.TrimPrefix(rest, lead)
	}
	if len(rest) > 0 && (rest[0] == 'v' || rest[0] == 'V') {
		rest = rest[1:]
	}
	v, err := version.Parse(rest)
	if err != nil {
		return version.Zero, false
	}
	return v, true
}

// Best returns the highest version tagged for a project at a given
// commit, breaking ties by sorting descending and taking the first
// (spec.md §4.2's "sort versions descending, take first").
func (idx Index) Best(project config.ProjectID, oid vcs.CommitOID) (Resolved, bool) {
	byCommit, ok := idx[project]
	if !ok {
		return Resolved{}, false
	}
	resolved, ok := byCommit[oid]
	if !ok || len(resolved) == 0 {
		return Resolved{}, false
	}
	sorted := make([]Resolved, len(resolved))
	copy(sorted, resolved)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version.GreaterThan(sorted[j].Version)
	})
	return sorted[0], true
}

// HasAny reports whether a project has any tag recorded at oid.
func (idx Index) HasAny(project config.ProjectID, oid vcs.CommitOID) bool {
	_, ok := idx.Best(project, oid)
	return ok
}
