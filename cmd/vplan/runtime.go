package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/cliapp"
	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/historical"
	"github.com/versionplan/versionplan/internal/oldtag"
	"github.com/versionplan/versionplan/internal/pause"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/repodriver"
	"github.com/versionplan/versionplan/internal/tagscan"
	"github.com/versionplan/versionplan/internal/vcs"
	"github.com/versionplan/versionplan/internal/vcsgit"
)

// defaultConfigPath is the well-known config filename SPEC_FULL.md §6
// names for a repo root (spec.md's "known filename" at repo root).
const defaultConfigPath = "versionplan.yml"

// app bundles the resources every vplan subcommand needs: the resolved
// config, an open repository handle, and the repo root path used to
// resolve relative project roots and the pause-file.
type app struct {
	repoRoot string
	repo     vcs.Repository
	cfg      *config.Config
}

// newApp opens the repository at the current directory and loads the
// config, the way the teacher's initConfig resolves global state once
// per command invocation.
func newApp(o cliapp.Options) (*app, error) {
	const op = "main.newApp"

	root, err := filepath.Abs(".")
	if err != nil {
		return nil, vperrors.Internal(op, "failed to resolve working directory")
	}

	repo, err := vcsgit.Open(root)
	if err != nil {
		return nil, err
	}

	cfg, err := cliapp.LoadConfig(o)
	if err != nil {
		return nil, err
	}

	return &app{repoRoot: root, repo: repo, cfg: cfg}, nil
}

// pauseStore constructs this app's PauseResumeStore.
func (a *app) pauseStore() *pause.Store {
	return pause.NewStore(a.repoRoot, a.cfg)
}

// requireNotPaused is the startup gate every command but
// `release --resume`/`--abort` must pass.
func (a *app) requireNotPaused() error {
	return a.pauseStore().RequirePresent()
}

// tagIndex builds the TagScanner (C2) output for the current config.
func (a *app) tagIndex(ctx context.Context) (tagscan.Index, error) {
	return tagscan.Scan(ctx, a.repo, a.cfg.Projects)
}

// oldTagIndex builds the OldTagIndex (C3): current/prev versions per
// project, seeded from the TagScanner output.
func (a *app) oldTagIndex(ctx context.Context) (*oldtag.Index, error) {
	idx, err := a.tagIndex(ctx)
	if err != nil {
		return nil, err
	}
	return oldtag.Build(ctx, a.repo, a.cfg.PrevTagName, idx, a.cfg.Projects)
}

// slicer constructs a fresh HistoricalSlicer (C1) bound to this app's
// repo and config path.
func (a *app) slicer() *historical.Slicer {
	return historical.New(a.repo, defaultConfigPath)
}

// buildPlan runs the PlanBuilder (C5) and DependencyPropagator (C6)
// over every commit between HEAD and the prev-tag (exclusive of the
// remote-host-driven path; this app has no vcs.RemoteHost configured,
// so it always drives plan.Builder locally via repodriver).
func (a *app) buildPlan(ctx context.Context) (*plan.Plan, error) {
	const op = "main.buildPlan"

	head, err := a.repo.HeadOID(ctx)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to resolve HEAD")
	}

	var prevOID vcs.CommitOID
	if peeled, err := a.repo.PeelTag(ctx, vcs.TagName(a.cfg.PrevTagName)); err == nil {
		prevOID = peeled
	}

	b := plan.NewBuilder(a.slicer(), a.cfg)
	if err := repodriver.Drive(ctx, a.repo, head, prevOID, b); err != nil {
		return nil, err
	}

	p := b.Plan()
	if err := plan.Propagate(p, a.cfg.Projects); err != nil {
		return nil, err
	}
	for _, entry := range p.Incrs {
		entry.Changelog = changelog.Reorder(entry.Changelog)
	}
	return p, nil
}

// checkBranch enforces spec.md §7's branch-mismatch abort for release.
func (a *app) checkBranch(ctx context.Context) error {
	const op = "main.checkBranch"

	if a.cfg.ReleaseBranch == "" {
		return nil
	}
	current, err := a.repo.CurrentBranch(ctx)
	if err != nil {
		return vperrors.VCSIOWrap(err, op, "failed to resolve current branch")
	}
	if current != a.cfg.ReleaseBranch {
		return vperrors.BranchMismatch(op, fmt.Sprintf("Branch name %q doesn't match %q", current, a.cfg.ReleaseBranch))
	}
	return nil
}

// selectProject resolves one of --id/--name/--exact into a single
// project, per spec.md §6's `get`/`show`/`set`/`info` selector flags.
// An empty selector is only valid when exactly one project is configured.
func (a *app) selectProject(idFlag, nameFlag, exactFlag string) (*config.Project, error) {
	const op = "main.selectProject"

	switch {
	case idFlag != "":
		p, ok := a.cfg.ProjectByID(config.ProjectID(idFlag))
		if !ok {
			return nil, vperrors.NoSuchProject(op, fmt.Sprintf("no project with id %q", idFlag))
		}
		return p, nil
	case exactFlag != "":
		for _, p := range a.cfg.Projects {
			if p.Name == exactFlag {
				return p, nil
			}
		}
		return nil, vperrors.NoSuchProject(op, fmt.Sprintf("no project named exactly %q", exactFlag))
	case nameFlag != "":
		var matches []*config.Project
		needle := strings.ToLower(nameFlag)
		for _, p := range a.cfg.Projects {
			if strings.Contains(strings.ToLower(p.Name), needle) {
				matches = append(matches, p)
			}
		}
		if len(matches) == 0 {
			return nil, vperrors.NoSuchProject(op, fmt.Sprintf("no project matching %q", nameFlag))
		}
		if len(matches) > 1 {
			return nil, vperrors.AmbiguousProject(op, fmt.Sprintf("%d projects match %q", len(matches), nameFlag))
		}
		return matches[0], nil
	default:
		if len(a.cfg.Projects) == 1 {
			return a.cfg.Projects[0], nil
		}
		return nil, vperrors.AmbiguousProject(op, "no selector given and more than one project is configured")
	}
}
