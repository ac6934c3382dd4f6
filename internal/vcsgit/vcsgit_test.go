package vcsgit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/versionplan/versionplan/internal/vcs"
)

func initRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return repo, wt, dir
}

func commitFile(t *testing.T, wt *git.Worktree, dir, relPath, content, message string) string {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(relPath); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return hash.String()
}

func TestWalkCommitsFirstParent(t *testing.T) {
	_, wt, dir := initRepo(t)
	first := commitFile(t, wt, dir, "a.txt", "1", "feat: first")
	second := commitFile(t, wt, dir, "b.txt", "2", "fix: second")

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	commits, err := r.WalkCommits(ctx, vcs.CommitOID(second), vcs.CommitOID(first), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].OID != vcs.CommitOID(second) || commits[1].OID != vcs.CommitOID(first) {
		t.Errorf("unexpected commit order: %+v", commits)
	}
	if len(commits[0].TouchedPaths) != 1 || commits[0].TouchedPaths[0] != "b.txt" {
		t.Errorf("expected b.txt touched, got %v", commits[0].TouchedPaths)
	}
}

func TestBlobAtRevision(t *testing.T) {
	_, wt, dir := initRepo(t)
	first := commitFile(t, wt, dir, "config.yml", "version: 1", "chore: config v1")
	commitFile(t, wt, dir, "config.yml", "version: 2", "chore: config v2")

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	content, err := r.BlobAtRevision(ctx, vcs.CommitOID(first), "config.yml")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "version: 1" {
		t.Errorf("got %q", content)
	}
}

func TestBlobAtRevisionMissing(t *testing.T) {
	_, wt, dir := initRepo(t)
	first := commitFile(t, wt, dir, "a.txt", "1", "chore: a")

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.BlobAtRevision(context.Background(), vcs.CommitOID(first), "missing.txt")
	if err != vcs.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTagListPeelAndAnnotation(t *testing.T) {
	_, wt, dir := initRepo(t)
	oid := commitFile(t, wt, dir, "a.txt", "1", "feat: first")

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := r.CreateAnnotatedTag(ctx, "v1.0.0", vcs.CommitOID(oid), `{"versions":{}}`); err != nil {
		t.Fatal(err)
	}

	tags, err := r.ListTags(ctx, "v*")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0] != "v1.0.0" {
		t.Fatalf("ListTags() = %v", tags)
	}

	peeled, err := r.PeelTag(ctx, "v1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if peeled != vcs.CommitOID(oid) {
		t.Errorf("PeelTag() = %s, want %s", peeled, oid)
	}

	body, ok, err := r.TagAnnotation(ctx, "v1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || body != `{"versions":{}}` {
		t.Errorf("TagAnnotation() = %q, %v", body, ok)
	}
}

func TestCommitFiles(t *testing.T) {
	_, wt, dir := initRepo(t)
	commitFile(t, wt, dir, "a.txt", "1", "chore: init")

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	newOID, err := r.CommitFiles(ctx, "chore: release", map[string][]byte{
		"version.txt": []byte("1.1.0"),
	})
	if err != nil {
		t.Fatal(err)
	}
	content, err := r.BlobAtRevision(ctx, newOID, "version.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "1.1.0" {
		t.Errorf("got %q", content)
	}
}

func TestCurrentBranch(t *testing.T) {
	_, wt, dir := initRepo(t)
	commitFile(t, wt, dir, "a.txt", "1", "chore: init")

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	branch, err := r.CurrentBranch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if branch == "" {
		t.Error("expected a non-empty branch name")
	}
}
