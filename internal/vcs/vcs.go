// Package vcs defines the version-control port the planner depends on.
// The concrete adapter (internal/vcsgit) and the remote-host client are
// external collaborators per spec.md §1; this package only names the
// shape the rest of the planner programs against.
package vcs

import (
	"context"
	"time"
)

// CommitOID is a VCS commit object id, in whatever string form the
// adapter's backend uses (a full git hash for internal/vcsgit).
type CommitOID string

// ShortOID truncates oid to 7 characters, the form used in poisoned-release messages.
func (oid CommitOID) ShortOID() string {
	if len(oid) <= 7 {
		return string(oid)
	}
	return string(oid[:7])
}

// TagName is a raw tag name as it appears in the VCS, with no prefix stripped.
type TagName string

// CommitInfo describes one commit visited during a history walk: its
// oid, summary and full message (for conventional-commit parsing), and
// the paths it touched relative to the repo root.
type CommitInfo struct {
	OID            CommitOID
	Summary        string
	Message        string
	AuthorDate     time.Time
	TouchedPaths   []string
	ParentOIDs     []CommitOID
}

// Repository is the local-VCS port the planner depends on. An
// implementation must present a consistent view for the lifetime of one
// planner run; it is not re-entered concurrently (spec.md §5).
type Repository interface {
	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)

	// HeadOID returns the commit id HEAD currently points at.
	HeadOID(ctx context.Context) (CommitOID, error)

	// WalkCommits streams commits starting at from and walking back
	// through history to (and including) until, inclusive of both
	// endpoints. When firstParentOnly is true only the first parent of
	// each commit is followed (the in-line history LastCommitFinder
	// needs); otherwise every reachable ancestor is visited in
	// committer-time order, newest first.
	WalkCommits(ctx context.Context, from, until CommitOID, firstParentOnly bool) ([]CommitInfo, error)

	// BlobAtRevision reads the content of path as it existed at oid. It
	// returns ErrNotFound if the path did not exist at that revision.
	BlobAtRevision(ctx context.Context, oid CommitOID, path string) ([]byte, error)

	// ListTags returns every tag name in the repository matching an
	// fnmatch-style pattern (path.Match semantics).
	ListTags(ctx context.Context, pattern string) ([]TagName, error)

	// PeelTag resolves a tag (lightweight or annotated) to the commit
	// it ultimately points at (git's "{tag}^{}").
	PeelTag(ctx context.Context, tag TagName) (CommitOID, error)

	// TagAnnotation returns the raw annotation body of an annotated
	// tag. ok is false for a lightweight tag or a missing one.
	TagAnnotation(ctx context.Context, tag TagName) (body string, ok bool, err error)

	// CreateAnnotatedTag creates a new annotated tag pointing at oid.
	CreateAnnotatedTag(ctx context.Context, name TagName, oid CommitOID, message string) error

	// CommitFiles performs one atomic commit that writes every entry of
	// files (path relative to repo root → new content) and returns the
	// resulting commit id.
	CommitFiles(ctx context.Context, message string, files map[string][]byte) (CommitOID, error)
}

// ErrNotFound indicates a requested path did not exist at a revision.
var ErrNotFound = &notFoundError{}

type notFoundError struct{}

func (*notFoundError) Error() string { return "vcs: path not found at revision" }

// PullRequest is one externally-discovered PR group, delivered by the
// remote-host driver feeding PlanBuilder (spec.md §4.5).
type PullRequest struct {
	Number         int
	Title          string
	ClosedAt       time.Time
	URL            string
	DiscoveryOrder int
	Commits        []CommitInfo
}

// RemoteHost is the remote PR-metadata-hosting port. It is an external
// collaborator; the planner only consumes the ordered stream it yields.
type RemoteHost interface {
	// PullRequestsSince returns every PR closed at or after since,
	// ordered closed-at ascending (spec.md §5 ordering guarantee).
	PullRequestsSince(ctx context.Context, since time.Time) ([]PullRequest, error)
}
