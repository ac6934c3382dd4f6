// Package plan implements the centerpiece PlanBuilder (C5) and the Plan
// value it produces, plus the DependencyPropagator (C6) in propagate.go.
package plan

import (
	"context"
	"strings"

	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/historical"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/vcs"
)

// PlanEntry is a project's computed bump size and changelog.
type PlanEntry struct {
	Size      size.Size
	Changelog changelog.Changelog
}

// ChainWrite records that downstream's embedded upstream-version
// reference must be rewritten, regardless of whether the bump size
// propagated was above Empty.
type ChainWrite struct {
	Upstream   config.ProjectID
	Downstream config.ProjectID
}

// FailedCommit is one commit whose message did not parse as a
// conventional commit.
type FailedCommit struct {
	OID vcs.CommitOID
}

// Info carries side information about the plan beyond the per-project
// results.
type Info struct {
	FailedCommits []FailedCommit
}

// Plan is the full output of planning: a project's every computed size
// and changelog, the PRs that touched nothing, the chain-write list,
// and any poisoning failures.
type Plan struct {
	Incrs       map[config.ProjectID]*PlanEntry
	Ineffective []*changelog.LoggedPr
	ChainWrites []ChainWrite
	Info        Info
}

// HasFailure reports whether any commit in scope failed conventional parsing.
func (p *Plan) HasFailure() bool {
	return len(p.Info.FailedCommits) > 0
}

// FailedShortOIDsMessage renders the poisoned-release message from
// spec.md §4.8/§7: up to 5 short oids, trailing ",…" if there are more.
func (p *Plan) FailedShortOIDsMessage() string {
	const limit = 5
	oids := p.Info.FailedCommits
	shown := oids
	truncated := false
	if len(oids) > limit {
		shown = oids[:limit]
		truncated = true
	}
	parts := make([]string, len(shown))
	for i, c := range shown {
		parts[i] = c.OID.ShortOID()
	}
	msg := strings.Join(parts, ",")
	if truncated {
		msg += ",…"
	}
	return msg
}

// Builder implements PlanBuilder (C5): a push-style visitor driven by
// an externally supplied PR/commit/file stream.
type Builder struct {
	slicer  *historical.Slicer
	current *config.Config
	plan    *Plan

	failedSeen map[vcs.CommitOID]struct{}

	perProject  map[config.ProjectID]*changelog.LoggedPr
	ineffective *changelog.LoggedPr

	historicalSnapshot *config.Config
}

// NewBuilder constructs a Builder seeded with one Empty PlanEntry per
// current project.
func NewBuilder(slicer *historical.Slicer, current *config.Config) *Builder {
	p := &Plan{Incrs: make(map[config.ProjectID]*PlanEntry, len(current.Projects))}
	for _, proj := range current.Projects {
		p.Incrs[proj.ID] = &PlanEntry{Size: size.Empty}
	}
	return &Builder{
		slicer:     slicer,
		current:    current,
		plan:       p,
		failedSeen: make(map[vcs.CommitOID]struct{}),
	}
}

// Plan returns the plan built so far.
func (b *Builder) Plan() *Plan {
	return b.plan
}

// StartPR initializes one provisional LoggedPr per current project plus
// the shared "ineffective" reservoir (spec.md §4.5).
func (b *Builder) StartPR(pr vcs.PullRequest) {
	base := &changelog.LoggedPr{
		Number:         pr.Number,
		Title:          pr.Title,
		ClosedAt:       pr.ClosedAt,
		DiscoveryOrder: pr.DiscoveryOrder,
		URL:            pr.URL,
	}
	b.perProject = make(map[config.ProjectID]*changelog.LoggedPr, len(b.current.Projects))
	for _, proj := range b.current.Projects {
		b.perProject[proj.ID] = base.Clone()
	}
	b.ineffective = base.Clone()
}

// StartCommit slices the config back to this commit, computes each
// current project's size from its own (current) size rules, and
// appends a provisional LoggedCommit to every project's entry.
func (b *Builder) StartCommit(ctx context.Context, c vcs.CommitInfo) error {
	snapshot, err := b.slicer.SliceTo(ctx, c)
	if err != nil {
		return err
	}
	b.historicalSnapshot = snapshot

	kind, ok := conventionalKind(c.Message)
	isFailure := !ok
	if isFailure {
		if _, seen := b.failedSeen[c.OID]; !seen {
			b.failedSeen[c.OID] = struct{}{}
			b.plan.Info.FailedCommits = append(b.plan.Info.FailedCommits, FailedCommit{OID: c.OID})
		}
	}

	for _, proj := range b.current.Projects {
		s := size.Failure
		if !isFailure {
			s = proj.SizeFor(kind)
		}
		logged := b.perProject[proj.ID]
		logged.Commits = append(logged.Commits, changelog.LoggedCommit{
			OID:     c.OID,
			Summary: summary(c.Message),
			Message: c.Message,
			Size:    s,
		})
	}
	return nil
}

// StartFile flips Applies on the just-appended LoggedCommit of every
// project in the historical snapshot whose coverage matches path.
func (b *Builder) StartFile(path string) {
	if b.historicalSnapshot == nil {
		return
	}
	for _, historicalProject := range b.historicalSnapshot.Projects {
		if !historicalProject.Covered(path) {
			continue
		}
		logged, ok := b.perProject[historicalProject.ID]
		if !ok || len(logged.Commits) == 0 {
			continue
		}
		logged.Commits[len(logged.Commits)-1].Applies = true
	}
}

// FinishCommit is a no-op placeholder matching the driver's visitor
// shape; all of start_commit's and start_file's work is already done.
func (b *Builder) FinishCommit() {}

// FinishPR merges each project's provisional PR entry into incrs when
// it had at least one applying commit, or records the PR as
// ineffective when none did.
func (b *Builder) FinishPR() {
	anyApplies := false
	for _, proj := range b.current.Projects {
		logged := b.perProject[proj.ID]
		prSize := size.Empty
		hasApplies := false
		for _, c := range logged.Commits {
			if c.Applies {
				hasApplies = true
				prSize = size.Max(prSize, c.Size)
			}
		}
		if !hasApplies {
			continue
		}
		anyApplies = true
		entry := b.plan.Incrs[proj.ID]
		entry.Size = size.Max(entry.Size, prSize)
		entry.Changelog = append(entry.Changelog, changelog.NewPrEntry(logged, prSize))
	}
	if !anyApplies {
		b.plan.Ineffective = append(b.plan.Ineffective, b.ineffective)
	}
}

func summary(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}
