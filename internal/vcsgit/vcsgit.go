// Package vcsgit implements internal/vcs.Repository on top of go-git,
// the way the teacher's internal/service/git adapter wraps the same
// library for its own domain.
package vcsgit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/vcs"
)

// errStopIteration signals early termination of a go-git log walk.
var errStopIteration = errors.New("stop iteration")

// Repository adapts a go-git repository to internal/vcs.Repository.
type Repository struct {
	repo     *git.Repository
	worktree *git.Worktree
}

var _ vcs.Repository = (*Repository)(nil)

// Open opens the git repository rooted at path.
func Open(root string) (*Repository, error) {
	const op = "vcsgit.Open"

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to resolve repository path")
	}
	repo, err := git.PlainOpen(absPath)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to open repository")
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to get worktree")
	}
	return &Repository{repo: repo, worktree: wt}, nil
}

// CurrentBranch returns the short name of the currently checked out branch.
func (r *Repository) CurrentBranch(_ context.Context) (string, error) {
	const op = "vcsgit.CurrentBranch"
	head, err := r.repo.Head()
	if err != nil {
		return "", vperrors.VCSIOWrap(err, op, "failed to read HEAD")
	}
	if !head.Name().IsBranch() {
		return "", vperrors.VCSIO(op, "HEAD is not on a branch (detached HEAD)")
	}
	return head.Name().Short(), nil
}

// HeadOID returns the commit HEAD currently resolves to.
func (r *Repository) HeadOID(_ context.Context) (vcs.CommitOID, error) {
	const op = "vcsgit.HeadOID"
	head, err := r.repo.Head()
	if err != nil {
		return "", vperrors.VCSIOWrap(err, op, "failed to read HEAD")
	}
	return vcs.CommitOID(head.Hash().String()), nil
}

// WalkCommits streams commits from `from` back to (and including)
// `until`, following either every parent or only the first, per
// firstParentOnly.
func (r *Repository) WalkCommits(ctx context.Context, from, until vcs.CommitOID, firstParentOnly bool) ([]vcs.CommitInfo, error) {
	const op = "vcsgit.WalkCommits"

	fromHash := plumbing.NewHash(string(from))
	untilHash := plumbing.NewHash(string(until))

	if firstParentOnly {
		return r.walkFirstParent(ctx, fromHash, untilHash)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: fromHash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to start log walk")
	}
	defer iter.Close()

	var out []vcs.CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		info, convErr := r.convertCommit(c)
		if convErr != nil {
			return convErr
		}
		out = append(out, *info)
		if c.Hash == untilHash {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, vperrors.VCSIOWrap(err, op, "failed to walk commits")
	}
	return out, nil
}

func (r *Repository) walkFirstParent(ctx context.Context, from, until plumbing.Hash) ([]vcs.CommitInfo, error) {
	const op = "vcsgit.walkFirstParent"

	var out []vcs.CommitInfo
	hash := from
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c, err := r.repo.CommitObject(hash)
		if err != nil {
			return nil, vperrors.VCSIOWrap(err, op, fmt.Sprintf("failed to load commit %s", hash))
		}
		info, err := r.convertCommit(c)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
		if hash == until || c.NumParents() == 0 {
			break
		}
		hash = c.ParentHashes[0]
	}
	return out, nil
}

func (r *Repository) convertCommit(c *object.Commit) (*vcs.CommitInfo, error) {
	const op = "vcsgit.convertCommit"

	touched, err := touchedPaths(c)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to compute touched paths")
	}
	parents := make([]vcs.CommitOID, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, vcs.CommitOID(p.String()))
	}
	return &vcs.CommitInfo{
		OID:          vcs.CommitOID(c.Hash.String()),
		Summary:      firstLine(c.Message),
		Message:      c.Message,
		AuthorDate:   c.Author.When,
		TouchedPaths: touched,
		ParentOIDs:   parents,
	}, nil
}

func touchedPaths(c *object.Commit) ([]string, error) {
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var changes object.Changes
	if parentTree != nil {
		changes, err = object.DiffTree(parentTree, tree)
	} else {
		changes, err = object.DiffTree(&object.Tree{}, tree)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(changes))
	var paths []string
	for _, ch := range changes {
		for _, p := range []string{ch.From.Name, ch.To.Name} {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func firstLine(message string) string {
	for i := 0; i < len(message); i++ {
		if message[i] == '\n' {
			return message[:i]
		}
	}
	return message
}

// BlobAtRevision reads the content of a path as it existed at oid.
func (r *Repository) BlobAtRevision(_ context.Context, oid vcs.CommitOID, filePath string) ([]byte, error) {
	const op = "vcsgit.BlobAtRevision"

	commit, err := r.repo.CommitObject(plumbing.NewHash(string(oid)))
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to load commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to load tree")
	}
	f, err := tree.File(filePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, vcs.ErrNotFound
		}
		return nil, vperrors.VCSIOWrap(err, op, "failed to locate file in tree")
	}
	rc, err := f.Reader()
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to open blob reader")
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to read blob")
	}
	return buf.Bytes(), nil
}

// ListTags returns every tag name matching an fnmatch-style pattern.
func (r *Repository) ListTags(_ context.Context, pattern string) ([]vcs.TagName, error) {
	const op = "vcsgit.ListTags"

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to list tags")
	}
	defer iter.Close()

	var out []vcs.TagName
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		ok, matchErr := path.Match(pattern, name)
		if matchErr != nil {
			return matchErr
		}
		if ok {
			out = append(out, vcs.TagName(name))
		}
		return nil
	})
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to iterate tags")
	}
	return out, nil
}

// PeelTag resolves a tag, annotated or lightweight, to the commit it points to.
func (r *Repository) PeelTag(_ context.Context, tag vcs.TagName) (vcs.CommitOID, error) {
	const op = "vcsgit.PeelTag"

	ref, err := r.repo.Tag(string(tag))
	if err != nil {
		return "", vperrors.TagResolveWrap(err, op, fmt.Sprintf("tag %q not found", tag))
	}
	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return "", vperrors.TagResolveWrap(err, op, fmt.Sprintf("failed to peel annotated tag %q", tag))
		}
		return vcs.CommitOID(commit.Hash.String()), nil
	}
	return vcs.CommitOID(ref.Hash().String()), nil
}

// TagAnnotation returns the raw annotation body of an annotated tag.
func (r *Repository) TagAnnotation(_ context.Context, tag vcs.TagName) (string, bool, error) {
	const op = "vcsgit.TagAnnotation"

	ref, err := r.repo.Tag(string(tag))
	if err != nil {
		return "", false, nil
	}
	tagObj, err := r.repo.TagObject(ref.Hash())
	if err != nil {
		return "", false, nil
	}
	_ = op
	return tagObj.Message, true, nil
}

// CreateAnnotatedTag creates a new annotated tag at oid.
func (r *Repository) CreateAnnotatedTag(_ context.Context, name vcs.TagName, oid vcs.CommitOID, message string) error {
	const op = "vcsgit.CreateAnnotatedTag"

	_, err := r.repo.CreateTag(string(name), plumbing.NewHash(string(oid)), &git.CreateTagOptions{
		Message: message,
		Tagger: &object.Signature{
			Name:  "versionplan",
			Email: "versionplan@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return vperrors.VCSIOWrap(err, op, fmt.Sprintf("failed to create tag %q", name))
	}
	return nil
}

// CommitFiles writes every entry of files into the worktree and creates
// one commit, the atomic write step Releaser's Full engagement needs.
func (r *Repository) CommitFiles(_ context.Context, message string, files map[string][]byte) (vcs.CommitOID, error) {
	const op = "vcsgit.CommitFiles"

	root := r.worktree.Filesystem
	for relPath, content := range files {
		if dir := path.Dir(relPath); dir != "." {
			if err := root.MkdirAll(dir, 0o755); err != nil {
				return "", vperrors.VCSIOWrap(err, op, fmt.Sprintf("failed to create directory for %q", relPath))
			}
		}
		f, err := root.Create(relPath)
		if err != nil {
			return "", vperrors.VCSIOWrap(err, op, fmt.Sprintf("failed to create %q", relPath))
		}
		_, writeErr := f.Write(content)
		closeErr := f.Close()
		if writeErr != nil {
			return "", vperrors.VCSIOWrap(writeErr, op, fmt.Sprintf("failed to write %q", relPath))
		}
		if closeErr != nil {
			return "", vperrors.VCSIOWrap(closeErr, op, fmt.Sprintf("failed to close %q", relPath))
		}
		if _, err := r.worktree.Add(relPath); err != nil {
			return "", vperrors.VCSIOWrap(err, op, fmt.Sprintf("failed to stage %q", relPath))
		}
	}

	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "versionplan",
			Email: "versionplan@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", vperrors.VCSIOWrap(err, op, "failed to commit")
	}
	return vcs.CommitOID(hash.String()), nil
}
