// Package pause implements PauseResumeStore (C9): the pause-file that
// captures a Releaser's pending commit state mid-release, so a
// `release --pause` / `release --resume` pair has the same net effect
// as a single uninterrupted `release` run.
package pause

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/release"
	"github.com/versionplan/versionplan/internal/version"
)

// FileName is the pause-file's fixed name at the repository root,
// renamed from the original tool's ".versio-paused" to this module's
// own vocabulary (SPEC_FULL.md §6).
const FileName = ".versionplan-paused"

// PendingID uniquely names one paused run, the way the teacher's
// monorepo aggregate stamps each release with a uuid.
type PendingID string

// NewPendingID mints a fresh PendingID.
func NewPendingID() PendingID {
	return PendingID(uuid.New().String())
}

// capsule is the on-disk JSON shape of a pause-file.
type capsule struct {
	ID          PendingID                             `json:"id"`
	Message     string                                `json:"message"`
	Files       map[string]string                     `json:"files"` // base64-free: paths map to raw text content
	Versions    map[string]string                     `json:"versions"`
	ChainWrites []chainWriteJSON                       `json:"chain_writes"`
	Decisions   []decisionJSON                         `json:"decisions"`
}

type chainWriteJSON struct {
	Upstream   string `json:"upstream"`
	Downstream string `json:"downstream"`
}

type decisionJSON struct {
	ProjectID string `json:"project_id"`
	Kind      string `json:"kind"`
	Output    string `json:"output"`
}

// Store implements release.PauseStore against a JSON file at root/FileName.
type Store struct {
	root    string
	cfg     *config.Config
	id      PendingID
	idFunc  func() PendingID
}

// NewStore constructs a Store rooted at repoRoot. cfg is needed to
// resolve project ids back into *config.Project pointers on Resume.
func NewStore(repoRoot string, cfg *config.Config) *Store {
	return &Store{root: repoRoot, cfg: cfg, idFunc: NewPendingID}
}

func (s *Store) path() string {
	return filepath.Join(s.root, FileName)
}

// Present reports whether a pause-file currently exists.
func (s *Store) Present() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Save serializes pc to the pause-file. It implements release.PauseStore.
func (s *Store) Save(_ context.Context, pc release.PendingCommit) error {
	const op = "pause.Save"

	id := s.idFunc()
	s.id = id

	c := capsule{
		ID:      id,
		Message: pc.Message,
		Files:   make(map[string]string, len(pc.Files)),
	}
	for path, content := range pc.Files {
		c.Files[path] = string(content)
	}
	c.Versions = make(map[string]string, len(pc.Versions))
	for pid, v := range pc.Versions {
		c.Versions[string(pid)] = v.String()
	}
	for _, cw := range pc.ChainWrites {
		c.ChainWrites = append(c.ChainWrites, chainWriteJSON{Upstream: string(cw.Upstream), Downstream: string(cw.Downstream)})
	}
	for _, d := range pc.Decisions {
		c.Decisions = append(c.Decisions, decisionJSON{
			ProjectID: string(d.Project.ID),
			Kind:      d.Kind.String(),
			Output:    d.Output.String(),
		})
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return vperrors.Internal(op, "failed to marshal pause capsule")
	}
	if err := os.WriteFile(s.path(), data, 0o644); err != nil {
		return vperrors.VCSIOWrap(err, op, "failed to write pause-file")
	}
	return nil
}

// Load reads and decodes the pause-file without removing it, for
// callers (e.g. an `info`-style command) that want to inspect a paused
// run without committing to resume or abort.
func (s *Store) Load() (release.PendingCommit, error) {
	const op = "pause.Load"

	data, err := os.ReadFile(s.path())
	if err != nil {
		return release.PendingCommit{}, vperrors.MissingPauseFile(op, "no pause-file present")
	}
	var c capsule
	if err := json.Unmarshal(data, &c); err != nil {
		return release.PendingCommit{}, vperrors.Wrap(err, vperrors.KindInternal, op, "failed to parse pause-file")
	}
	return s.toPending(c), nil
}

func (s *Store) toPending(c capsule) release.PendingCommit {
	pc := release.PendingCommit{
		Message: c.Message,
		Files:   make(map[string][]byte, len(c.Files)),
	}
	for path, content := range c.Files {
		pc.Files[path] = []byte(content)
	}
	pc.Versions = make(map[config.ProjectID]version.VersionString, len(c.Versions))
	for pid, raw := range c.Versions {
		if v, err := version.Parse(raw); err == nil {
			pc.Versions[config.ProjectID(pid)] = v
		}
	}
	for _, cw := range c.ChainWrites {
		pc.ChainWrites = append(pc.ChainWrites, plan.ChainWrite{
			Upstream:   config.ProjectID(cw.Upstream),
			Downstream: config.ProjectID(cw.Downstream),
		})
	}
	for _, d := range c.Decisions {
		proj, ok := s.cfg.ProjectByID(config.ProjectID(d.ProjectID))
		if !ok {
			continue
		}
		output, _ := version.Parse(d.Output)
		pc.Decisions = append(pc.Decisions, release.Decision{
			Project: proj,
			Kind:    parseDecisionKind(d.Kind),
			Output:  output,
		})
	}
	return pc
}

func parseDecisionKind(s string) release.DecisionKind {
	switch s {
	case "new":
		return release.New
	case "new_locked":
		return release.NewLocked
	case "forward":
		return release.Forward
	case "forward_locked":
		return release.ForwardLocked
	case "bump":
		return release.Bump
	default:
		return release.NoChange
	}
}

// Resume loads the pause-file, deletes it (before committing, so the
// file itself is never staged into the commit it describes), and
// returns the pending commit for the caller to finish applying via
// releaser.ApplyPending.
func (s *Store) Resume() (release.PendingCommit, error) {
	pc, err := s.Load()
	if err != nil {
		return release.PendingCommit{}, err
	}
	if err := os.Remove(s.path()); err != nil {
		const op = "pause.Resume"
		return release.PendingCommit{}, vperrors.VCSIOWrap(err, op, "failed to remove pause-file")
	}
	return pc, nil
}

// Abort deletes the pause-file without applying it. The caller is
// responsible for any VCS rollback of working-tree state (spec.md §4.9).
func (s *Store) Abort() error {
	const op = "pause.Abort"
	if !s.Present() {
		return vperrors.MissingPauseFile(op, "no pause-file present")
	}
	if err := os.Remove(s.path()); err != nil {
		return vperrors.VCSIOWrap(err, op, "failed to remove pause-file")
	}
	return nil
}

// RequirePresent is the hard-error check every non-resume/abort command
// runs at startup (spec.md §4.9/§7).
func (s *Store) RequirePresent() error {
	const op = "pause.RequirePresent"
	if s.Present() {
		return vperrors.PausedState(op, "a paused release is pending; run `release --resume` or `release --abort`")
	}
	return nil
}
