// Package prdriver feeds a plan.Builder from an externally-supplied
// PR/commit stream, the PlanBuilder (C5) driver spec.md §5 describes:
// PR groups delivered in their externally defined order, each group's
// commits replayed in ancestry order, with the only concurrency the
// planner performs being the PR-metadata touched-path prefetch.
package prdriver

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/vcs"
)

// DefaultConcurrency bounds how many PR groups have their commits'
// touched paths enriched at once.
const DefaultConcurrency = 4

// Driver fetches a PR stream from a vcs.RemoteHost and drives a
// plan.Builder's StartPR/StartCommit/StartFile/FinishCommit/FinishPR
// calls in the remote host's delivery order.
type Driver struct {
	repo        vcs.Repository
	remote      vcs.RemoteHost
	concurrency int
}

// New constructs a Driver with DefaultConcurrency.
func New(repo vcs.Repository, remote vcs.RemoteHost) *Driver {
	return &Driver{repo: repo, remote: remote, concurrency: DefaultConcurrency}
}

// WithConcurrency overrides the touched-path prefetch worker limit.
func (d *Driver) WithConcurrency(n int) *Driver {
	if n > 0 {
		d.concurrency = n
	}
	return d
}

// Drive fetches every PR closed at or after since and replays it
// through b, preserving the remote host's delivery order even though
// touched-path enrichment happens concurrently across PR groups.
func (d *Driver) Drive(ctx context.Context, since time.Time, b *plan.Builder) error {
	const op = "prdriver.Drive"

	prs, err := d.remote.PullRequestsSince(ctx, since)
	if err != nil {
		return vperrors.RemoteIOWrap(err, op, "failed to fetch PR metadata")
	}

	enriched := make([][]vcs.CommitInfo, len(prs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, pr := range prs {
		i, pr := i, pr
		g.Go(func() error {
			commits := make([]vcs.CommitInfo, len(pr.Commits))
			for j, c := range pr.Commits {
				if len(c.TouchedPaths) == 0 {
					paths, err := d.touchedPaths(gctx, c.OID)
					if err != nil {
						return err
					}
					c.TouchedPaths = paths
				}
				commits[j] = c
			}
			enriched[i] = commits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return vperrors.VCSIOWrap(err, op, "failed to enrich PR commits with touched paths")
	}

	for i, pr := range prs {
		b.StartPR(pr)
		for _, c := range enriched[i] {
			if err := b.StartCommit(ctx, c); err != nil {
				return err
			}
			for _, path := range c.TouchedPaths {
				b.StartFile(path)
			}
			b.FinishCommit()
		}
		b.FinishPR()
	}
	return nil
}

// touchedPaths resolves a single commit's touched paths via a
// one-commit WalkCommits, reusing the Repository port rather than
// adding a narrower single-purpose diff method.
func (d *Driver) touchedPaths(ctx context.Context, oid vcs.CommitOID) ([]string, error) {
	commits, err := d.repo.WalkCommits(ctx, oid, oid, true)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}
	return commits[0].TouchedPaths, nil
}
