// Package repodriver drives a plan.Builder directly from local commit
// history, for runs with no vcs.RemoteHost configured. Each commit
// becomes its own single-commit PR group, the smallest unit the
// PlanBuilder driver contract (spec.md §5) can express without real PR
// metadata.
package repodriver

import (
	"context"

	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/vcs"
)

// Drive walks first-parent commits from head back to (and including)
// prevOID and replays them through b, newest first, each wrapped as a
// one-commit vcs.PullRequest so plan.Builder's ordering and
// ineffective-PR bookkeeping apply unchanged.
func Drive(ctx context.Context, repo vcs.Repository, head, prevOID vcs.CommitOID, b *plan.Builder) error {
	const op = "repodriver.Drive"

	commits, err := repo.WalkCommits(ctx, head, prevOID, true)
	if err != nil {
		return vperrors.VCSIOWrap(err, op, "failed to walk local history")
	}

	for i, c := range commits {
		pr := vcs.PullRequest{
			Number:         0,
			Title:          c.Summary,
			ClosedAt:       c.AuthorDate,
			DiscoveryOrder: len(commits) - 1 - i,
			Commits:        []vcs.CommitInfo{c},
		}
		b.StartPR(pr)
		if err := b.StartCommit(ctx, c); err != nil {
			return err
		}
		for _, path := range c.TouchedPaths {
			b.StartFile(path)
		}
		b.FinishCommit()
		b.FinishPR()
	}
	return nil
}
