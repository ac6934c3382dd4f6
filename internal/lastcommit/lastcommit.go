// Package lastcommit implements LastCommitFinder (C4): for each
// project, the most recent in-line commit that touched one of its
// covered paths, used by the committer to avoid tagging projects that
// never changed.
package lastcommit

import (
	"context"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/historical"
	"github.com/versionplan/versionplan/internal/vcs"
)

// Find walks first-parent commits from head back to (and including)
// prevOID, slicing the HistoricalSlicer at each one to learn which
// projects existed and what they covered at that point in time, and
// recording the newest commit that touched each current project.
func Find(ctx context.Context, repo vcs.Repository, slicer *historical.Slicer, head, prevOID vcs.CommitOID, current []*config.Project) (map[config.ProjectID]vcs.CommitOID, error) {
	const op = "lastcommit.Find"

	currentByID := make(map[config.ProjectID]*config.Project, len(current))
	for _, p := range current {
		currentByID[p.ID] = p
	}

	commits, err := repo.WalkCommits(ctx, head, prevOID, true)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to walk first-parent history")
	}

	found := make(map[config.ProjectID]vcs.CommitOID)
	for _, c := range commits {
		if len(found) == len(currentByID) {
			break
		}
		snapshot, err := slicer.SliceTo(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, historicalProject := range snapshot.Projects {
			if _, ok := found[historicalProject.ID]; ok {
				continue
			}
			if _, ok := currentByID[historicalProject.ID]; !ok {
				continue
			}
			if touchesAny(historicalProject, c.TouchedPaths) {
				found[historicalProject.ID] = c.OID
			}
		}
	}
	return found, nil
}

func touchesAny(p *config.Project, paths []string) bool {
	for _, path := range paths {
		if p.Covered(path) {
			return true
		}
	}
	return false
}
