package release

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/oldtag"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/restriction"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/vcs"
	"github.com/versionplan/versionplan/internal/version"
)

// EngagementMode controls how far a release run's side effects reach.
type EngagementMode uint8

const (
	// Dry reports the plan's decisions and touches nothing.
	Dry EngagementMode = iota
	// ChangelogOnly writes changelog files but performs no VCS commit or tag.
	ChangelogOnly
	// Full performs the atomic commit and per-project tags, or pauses.
	Full
)

// VersionWriter renders a project's version-source edits; the renderer
// is an external collaborator (spec.md §1) this package only depends on
// through this interface.
type VersionWriter interface {
	// WriteVersion renders proj's version source with v written in. An
	// empty path means the project has no in-tree version source to write.
	WriteVersion(proj *config.Project, v version.VersionString) (path string, content []byte, err error)
	// WriteChainRef renders downstream's embedded reference to
	// upstream's new version, independent of downstream's own bump size.
	WriteChainRef(downstream, upstream *config.Project, upstreamVersion version.VersionString) (path string, content []byte, err error)
}

// ChangelogWriter renders one project's changelog file for this release.
type ChangelogWriter interface {
	WriteChangelog(proj *config.Project, entries changelog.Changelog, d Decision) (path string, content []byte, err error)
}

// PendingCommit is the capsule PauseResumeStore (C9) serializes to the
// pause-file, and later feeds back into ApplyPending to finish the Full
// engagement's commit+tag step.
type PendingCommit struct {
	Message     string
	Files       map[string][]byte
	Versions    map[config.ProjectID]version.VersionString
	ChainWrites []plan.ChainWrite
	Decisions   []Decision
}

// PauseStore is the seam PauseResumeStore implements; Releaser depends
// only on this interface so internal/release has no import of
// internal/pause (which in turn depends on internal/release's types).
type PauseStore interface {
	Save(ctx context.Context, pc PendingCommit) error
}

// Result is everything one release run produced.
type Result struct {
	Decisions     []Decision
	NoChangeLines []string
	Paused        bool
}

// Releaser drives C8 end to end: decision table, chain-write and
// changelog rendering, and the engagement-mode-gated VCS apply step.
type Releaser struct {
	repo       vcs.Repository
	versions   VersionWriter
	changelogs ChangelogWriter
	pauseStore PauseStore
	mode       EngagementMode
	locktags   bool
}

// NewReleaser constructs a Releaser. versions/changelogs/pauseStore may
// be nil when the engagement mode never needs them (e.g. a Dry run with
// no changelog renderer configured).
func NewReleaser(repo vcs.Repository, versions VersionWriter, changelogs ChangelogWriter, pauseStore PauseStore, mode EngagementMode, locktags bool) *Releaser {
	return &Releaser{repo: repo, versions: versions, changelogs: changelogs, pauseStore: pauseStore, mode: mode, locktags: locktags}
}

// Run evaluates the C8 decision table for every project in cfg against
// p and idx, then carries out r's engagement mode. FailedPoison aborts
// before any per-project decision or write happens.
func (r *Releaser) Run(ctx context.Context, cfg *config.Config, p *plan.Plan, idx *oldtag.Index, pause bool) (*Result, error) {
	const op = "release.Run"

	if p.HasFailure() {
		return nil, vperrors.ConventionalParse(op, fmt.Sprintf("unparseable conventional commit(s): %s", p.FailedShortOIDsMessage()))
	}

	result := &Result{}
	files := make(map[string][]byte)
	versions := make(map[config.ProjectID]version.VersionString, len(cfg.Projects))
	changelogByProject := make(map[config.ProjectID]changelog.Changelog, len(cfg.Projects))

	for _, proj := range cfg.Projects {
		planSize := size.Empty
		var entries changelog.Changelog
		if entry, ok := p.Incrs[proj.ID]; ok {
			planSize = entry.Size
			entries = entry.Changelog
		}
		changelogByProject[proj.ID] = entries

		curt := idx.Current[proj.ID]
		prev, hasPrev := idx.Prev[proj.ID]

		restrictions, err := restriction.Parse(proj.Restrictions)
		if err != nil {
			return nil, vperrors.ConfigParseWrap(err, op, "invalid restrictions for project "+string(proj.ID))
		}

		decision, err := Decide(proj, hasPrev, prev, curt, planSize, r.locktags, restrictions)
		if err != nil {
			return nil, err
		}
		result.Decisions = append(result.Decisions, decision)
		versions[proj.ID] = decision.Output

		if decision.Kind == NoChange || decision.Kind == NewLocked || decision.Kind == ForwardLocked {
			result.NoChangeLines = append(result.NoChangeLines, fmt.Sprintf("%s: no_change (%s)", proj.Name, decision.Output))
			continue
		}

		if r.mode == Dry {
			continue
		}

		if decision.Kind.Writes() && r.versions != nil {
			path, content, err := r.versions.WriteVersion(proj, decision.Output)
			if err != nil {
				return nil, vperrors.VCSIOWrap(err, op, "failed to render version source for "+string(proj.ID))
			}
			if path != "" {
				files[path] = content
			}
		}
		if r.changelogs != nil && len(entries) > 0 {
			path, content, err := r.changelogs.WriteChangelog(proj, entries, decision)
			if err != nil {
				return nil, vperrors.VCSIOWrap(err, op, "failed to render changelog for "+string(proj.ID))
			}
			if path != "" {
				files[path] = content
			}
		}
	}

	if r.mode != Dry && r.versions != nil {
		for _, cw := range p.ChainWrites {
			downstream, ok := cfg.ProjectByID(cw.Downstream)
			if !ok {
				continue
			}
			upstream, ok := cfg.ProjectByID(cw.Upstream)
			if !ok {
				continue
			}
			path, content, err := r.versions.WriteChainRef(downstream, upstream, versions[cw.Upstream])
			if err != nil {
				return nil, vperrors.VCSIOWrap(err, op, "failed to render chain-write for "+string(cw.Downstream))
			}
			if path != "" {
				files[path] = content
			}
		}
	}

	if r.mode != Full {
		return result, nil
	}

	message, err := renderCommitMessage(cfg.CommitMessageTemplate, result.Decisions)
	if err != nil {
		return nil, vperrors.Internal(op, "failed to render commit message: "+err.Error())
	}

	pending := PendingCommit{
		Message:     message,
		Files:       files,
		Versions:    versions,
		ChainWrites: p.ChainWrites,
		Decisions:   result.Decisions,
	}

	if pause {
		if r.pauseStore == nil {
			return nil, vperrors.Internal(op, "pause requested but no pause store configured")
		}
		if err := r.pauseStore.Save(ctx, pending); err != nil {
			return nil, vperrors.VCSIOWrap(err, op, "failed to write pause-file")
		}
		result.Paused = true
		return result, nil
	}

	if err := r.ApplyPending(ctx, cfg, pending); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyPending performs the atomic commit and per-project tag creation
// for a PendingCommit, either freshly computed by Run or loaded back
// from the pause-file by PauseResumeStore.Resume.
func (r *Releaser) ApplyPending(ctx context.Context, cfg *config.Config, pending PendingCommit) error {
	const op = "release.ApplyPending"

	if len(pending.Files) == 0 {
		return nil
	}

	commitOID, err := r.repo.CommitFiles(ctx, pending.Message, pending.Files)
	if err != nil {
		return vperrors.VCSIOWrap(err, op, "failed to commit release changes")
	}

	annotation, err := oldtag.SerializeAnnotation(pending.Versions)
	if err != nil {
		return vperrors.Internal(op, "failed to serialize prev-tag annotation")
	}

	for _, d := range pending.Decisions {
		if !d.Kind.Tags() {
			continue
		}
		tagName, ok := d.Project.TagNameFor(d.Output)
		if !ok {
			continue
		}
		if err := r.repo.CreateAnnotatedTag(ctx, vcs.TagName(tagName), commitOID, annotation); err != nil {
			return vperrors.TagResolveWrap(err, op, "failed to create tag "+tagName)
		}
	}

	if err := r.repo.CreateAnnotatedTag(ctx, vcs.TagName(cfg.PrevTagName), commitOID, annotation); err != nil {
		return vperrors.TagResolveWrap(err, op, "failed to move prev-tag "+cfg.PrevTagName)
	}
	return nil
}

// renderCommitMessage renders tmpl (text/template syntax, the same
// engine the teacher's template.Service wraps) against a summary of
// this run's bumped projects.
func renderCommitMessage(tmpl string, decisions []Decision) (string, error) {
	var bumped []string
	for _, d := range decisions {
		if d.Kind.Tags() || d.Kind.Writes() {
			bumped = append(bumped, fmt.Sprintf("%s %s", d.Project.Name, d.Output))
		}
	}
	summary := "no version changes"
	if len(bumped) > 0 {
		summary = "release " + strings.Join(bumped, ", ")
	}

	t, err := template.New("commit-message").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Summary string }{Summary: summary}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
