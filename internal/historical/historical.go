// Package historical implements the HistoricalSlicer (C1): a cursor
// that lazily materializes the config file as it existed at a given
// commit, moving only backward through history within a single walk.
package historical

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/vcs"
)

// ErrNotMonotonic indicates a slice was requested for a commit newer
// than the one most recently sliced to, violating the "only moves
// backward" contract of a single walk.
var ErrNotMonotonic = errors.New("historical: slice_to called out of order")

// Slicer is the tagged-variant cursor from spec.md §9: it starts
// "unsliced," bound only to a repository and a config path, and becomes
// "sliced" the first time SliceTo succeeds.
type Slicer struct {
	repo       vcs.Repository
	configPath string

	lastDate *time.Time
	current  *config.Config
}

// New constructs an unsliced Slicer bound to repo, reading the config
// file at configPath (repo-root-relative) at each revision.
func New(repo vcs.Repository, configPath string) *Slicer {
	return &Slicer{repo: repo, configPath: configPath}
}

// SliceTo returns the config as it existed at commit, reading and
// parsing the config blob at that revision. Callers must present
// commits in backward-through-history order (newest seen first); a
// later call with a commit newer than the last one sliced to returns
// ErrNotMonotonic.
func (s *Slicer) SliceTo(ctx context.Context, commit vcs.CommitInfo) (*config.Config, error) {
	const op = "historical.SliceTo"

	if s.lastDate != nil && commit.AuthorDate.After(*s.lastDate) {
		return nil, ErrNotMonotonic
	}

	data, err := s.repo.BlobAtRevision(ctx, commit.OID, s.configPath)
	if errors.Is(err, vcs.ErrNotFound) {
		return nil, vperrors.ConfigParse(op, fmt.Sprintf("missing config at revision %s", commit.OID.ShortOID()))
	}
	if err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, "failed to read config blob")
	}

	cfg, err := config.ParseBytes(data)
	if err != nil {
		return nil, vperrors.ConfigParseWrap(err, op, fmt.Sprintf("failed to parse config at revision %s", commit.OID.ShortOID()))
	}

	date := commit.AuthorDate
	s.lastDate = &date
	s.current = cfg
	return cfg, nil
}

// Current returns the most recently sliced config, or nil if SliceTo
// has never been called.
func (s *Slicer) Current() *config.Config {
	return s.current
}
