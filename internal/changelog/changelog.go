// Package changelog defines the changelog data model — LoggedCommit,
// LoggedPr, and the Dep/Pr entry variants PlanBuilder assembles — and
// implements the ChangelogOrderer (C7).
package changelog

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/vcs"
)

// LoggedCommit is one commit recorded against a project's changelog.
type LoggedCommit struct {
	OID       vcs.CommitOID
	Summary   string
	Message   string
	Size      size.Size
	Applies   bool
	Duplicate bool
	URL       string
}

// Included reports whether this commit counts toward a PR's aggregated
// size: it applies to the project and hasn't been marked a duplicate of
// an entry already seen elsewhere in the same project's changelog.
func (c LoggedCommit) Included() bool {
	return c.Applies && !c.Duplicate
}

// LoggedPr is one pull request's provisional changelog entry for a
// single project.
type LoggedPr struct {
	Number         int
	Title          string
	ClosedAt       time.Time
	DiscoveryOrder int
	Commits        []LoggedCommit
	URL            string
}

// Clone returns a shallow copy of p with no commits (Commits is nil), used to
// give each project (and the shared ineffective reservoir) an
// independent provisional entry for the same PR.
func (p *LoggedPr) Clone() *LoggedPr {
	clone := *p
	clone.Commits = nil
	return &clone
}

// AggregatedSize is max(c.Size for c in p.Commits if c.Included()),
// defaulting to Empty (spec.md §4.7).
func (p *LoggedPr) AggregatedSize() size.Size {
	s := size.Empty
	for _, c := range p.Commits {
		if c.Included() {
			s = size.Max(s, c.Size)
		}
	}
	return s
}

// EntryKind distinguishes a changelog entry that reports a dependency
// bump from one that reports a PR's own changes.
type EntryKind uint8

const (
	EntryPr EntryKind = iota
	EntryDep
)

// Entry is either a Pr(LoggedPr, aggregated_size) or a
// Dep(upstream_id, upstream_name), per spec.md §3.
type Entry struct {
	Kind           EntryKind
	Pr             *LoggedPr
	AggregatedSize size.Size
	UpstreamID     config.ProjectID
	UpstreamName   string
}

// NewPrEntry builds a Pr changelog entry.
func NewPrEntry(pr *LoggedPr, aggregatedSize size.Size) Entry {
	return Entry{Kind: EntryPr, Pr: pr, AggregatedSize: aggregatedSize}
}

// NewDepEntry builds a Dep changelog entry recording a propagated bump.
func NewDepEntry(upstream config.ProjectID, upstreamName string) Entry {
	return Entry{Kind: EntryDep, UpstreamID: upstream, UpstreamName: upstreamName}
}

// Changelog is one project's ordered list of entries.
type Changelog []Entry

var collator = collate.New(language.Und)

// Order sorts entries so Dep precedes Pr; within Dep, lexicographically
// by upstream id; within Pr, descending by discovery order (newest
// first) — spec.md §4.7.
func (c Changelog) Order() Changelog {
	sorted := make(Changelog, len(c))
	copy(sorted, c)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind != b.Kind {
			return a.Kind == EntryDep
		}
		if a.Kind == EntryDep {
			return collator.CompareString(string(a.UpstreamID), string(b.UpstreamID)) < 0
		}
		return a.Pr.DiscoveryOrder > b.Pr.DiscoveryOrder
	})
	return sorted
}

// MarkDuplicates walks entries front-to-back, setting Duplicate=true on
// any LoggedCommit whose oid has already been seen earlier in the
// changelog — de-duplicating commits that span PRs. Call after Order,
// so "front" means the display order.
func (c Changelog) MarkDuplicates() {
	seen := make(map[vcs.CommitOID]struct{})
	for _, e := range c {
		if e.Kind != EntryPr {
			continue
		}
		for i := range e.Pr.Commits {
			oid := e.Pr.Commits[i].OID
			if _, ok := seen[oid]; ok {
				e.Pr.Commits[i].Duplicate = true
				continue
			}
			seen[oid] = struct{}{}
		}
	}
}

// RecomputeSizes refreshes each Pr entry's AggregatedSize from its
// commits' current Included() state, the step that follows
// MarkDuplicates in C7.
func (c Changelog) RecomputeSizes() {
	for i := range c {
		if c[i].Kind == EntryPr {
			c[i].AggregatedSize = c[i].Pr.AggregatedSize()
		}
	}
}

// Reorder runs the full ChangelogOrderer pass: sort, mark cross-PR
// duplicates, then recompute aggregated sizes. It returns the
// (re-allocated) ordered changelog; callers should replace their
// stored copy with the result.
func Reorder(c Changelog) Changelog {
	ordered := c.Order()
	ordered.MarkDuplicates()
	ordered.RecomputeSizes()
	return ordered
}
