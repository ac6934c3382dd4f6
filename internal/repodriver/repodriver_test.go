package repodriver

import (
	"context"
	"testing"
	"time"

	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/historical"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/vcs"
)

const oneProjectYAML = `
projects:
  - id: p1
    includes: ["src/**"]
    sizes:
      feat: minor
`

type fakeRepo struct {
	blob    []byte
	commits []vcs.CommitInfo
}

func (f *fakeRepo) CurrentBranch(context.Context) (string, error)  { panic("unused") }
func (f *fakeRepo) HeadOID(context.Context) (vcs.CommitOID, error) { panic("unused") }
func (f *fakeRepo) WalkCommits(context.Context, vcs.CommitOID, vcs.CommitOID, bool) ([]vcs.CommitInfo, error) {
	return f.commits, nil
}
func (f *fakeRepo) BlobAtRevision(context.Context, vcs.CommitOID, string) ([]byte, error) {
	return f.blob, nil
}
func (f *fakeRepo) ListTags(context.Context, string) ([]vcs.TagName, error)          { panic("unused") }
func (f *fakeRepo) PeelTag(context.Context, vcs.TagName) (vcs.CommitOID, error)      { panic("unused") }
func (f *fakeRepo) TagAnnotation(context.Context, vcs.TagName) (string, bool, error) { panic("unused") }
func (f *fakeRepo) CreateAnnotatedTag(context.Context, vcs.TagName, vcs.CommitOID, string) error {
	panic("unused")
}
func (f *fakeRepo) CommitFiles(context.Context, string, map[string][]byte) (vcs.CommitOID, error) {
	panic("unused")
}

var _ vcs.Repository = (*fakeRepo)(nil)

func TestDriveFeedsCommitsNewestFirst(t *testing.T) {
	repo := &fakeRepo{
		blob: []byte(oneProjectYAML),
		commits: []vcs.CommitInfo{
			{OID: "c2", Message: "feat: two", AuthorDate: time.Unix(200, 0), TouchedPaths: []string{"src/b.go"}},
			{OID: "c1", Message: "feat: one", AuthorDate: time.Unix(100, 0), TouchedPaths: []string{"src/a.go"}},
		},
	}
	cfg, err := config.ParseBytes([]byte(oneProjectYAML))
	if err != nil {
		t.Fatal(err)
	}
	slicer := historical.New(repo, "versionplan.yml")
	b := plan.NewBuilder(slicer, cfg)

	if err := Drive(context.Background(), repo, "c2", "c1", b); err != nil {
		t.Fatal(err)
	}

	p := b.Plan()
	entry := p.Incrs["p1"]
	if entry.Size != size.Minor {
		t.Fatalf("expected Minor, got %s", entry.Size)
	}
	if len(entry.Changelog) != 2 {
		t.Fatalf("expected two single-commit PR entries, got %d", len(entry.Changelog))
	}
	if entry.Changelog[0].Pr.DiscoveryOrder != 1 {
		t.Fatalf("expected newest commit (c2) to carry the higher discovery order, got %d", entry.Changelog[0].Pr.DiscoveryOrder)
	}
}
