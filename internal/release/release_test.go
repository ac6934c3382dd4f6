package release

import (
	"context"
	"testing"

	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/oldtag"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/vcs"
	"github.com/versionplan/versionplan/internal/version"
)

type fakeRepo struct {
	committed    map[string][]byte
	commitMsg    string
	tagsCreated  []vcs.TagName
	commitCalled bool
}

func (f *fakeRepo) CurrentBranch(context.Context) (string, error)  { panic("unused") }
func (f *fakeRepo) HeadOID(context.Context) (vcs.CommitOID, error) { panic("unused") }
func (f *fakeRepo) WalkCommits(context.Context, vcs.CommitOID, vcs.CommitOID, bool) ([]vcs.CommitInfo, error) {
	panic("unused")
}
func (f *fakeRepo) BlobAtRevision(context.Context, vcs.CommitOID, string) ([]byte, error) {
	panic("unused")
}
func (f *fakeRepo) ListTags(context.Context, string) ([]vcs.TagName, error)     { panic("unused") }
func (f *fakeRepo) PeelTag(context.Context, vcs.TagName) (vcs.CommitOID, error) { panic("unused") }
func (f *fakeRepo) TagAnnotation(context.Context, vcs.TagName) (string, bool, error) {
	panic("unused")
}
func (f *fakeRepo) CreateAnnotatedTag(_ context.Context, name vcs.TagName, _ vcs.CommitOID, _ string) error {
	f.tagsCreated = append(f.tagsCreated, name)
	return nil
}
func (f *fakeRepo) CommitFiles(_ context.Context, message string, files map[string][]byte) (vcs.CommitOID, error) {
	f.commitCalled = true
	f.commitMsg = message
	f.committed = files
	return "deadbeef", nil
}

var _ vcs.Repository = (*fakeRepo)(nil)

type fakeVersionWriter struct{}

func (fakeVersionWriter) WriteVersion(proj *config.Project, v version.VersionString) (string, []byte, error) {
	return "VERSION_" + string(proj.ID), []byte(v.String()), nil
}
func (fakeVersionWriter) WriteChainRef(downstream, upstream *config.Project, v version.VersionString) (string, []byte, error) {
	return "DEPS_" + string(downstream.ID), []byte(string(upstream.ID) + "@" + v.String()), nil
}

type fakeChangelogWriter struct{}

func (fakeChangelogWriter) WriteChangelog(proj *config.Project, entries changelog.Changelog, d Decision) (string, []byte, error) {
	return "CHANGELOG_" + string(proj.ID), []byte("changed"), nil
}

func prefix(s string) *string { return &s }

func TestRunDryModeTouchesNothing(t *testing.T) {
	proj := &config.Project{ID: "p1", Name: "p1", TagPrefix: prefix("")}
	cfg := &config.Config{PrevTagName: "versio-prev", CommitMessageTemplate: "{{.Summary}}", Projects: []*config.Project{proj}}
	p := &plan.Plan{Incrs: map[config.ProjectID]*plan.PlanEntry{"p1": {Size: size.Minor}}}
	idx := &oldtag.Index{Current: map[config.ProjectID]version.VersionString{"p1": version.MustParse("1.0.0")}, Prev: map[config.ProjectID]version.VersionString{"p1": version.MustParse("1.0.0")}}

	repo := &fakeRepo{}
	r := NewReleaser(repo, fakeVersionWriter{}, fakeChangelogWriter{}, nil, Dry, false)
	result, err := r.Run(context.Background(), cfg, p, idx, false)
	if err != nil {
		t.Fatal(err)
	}
	if repo.commitCalled {
		t.Error("expected Dry mode not to commit")
	}
	if len(result.Decisions) != 1 || result.Decisions[0].Kind != Bump {
		t.Errorf("expected a Bump decision, got %+v", result.Decisions)
	}
}

func TestRunFullModeCommitsAndTags(t *testing.T) {
	proj := &config.Project{ID: "p1", Name: "p1", TagPrefix: prefix("")}
	cfg := &config.Config{PrevTagName: "versio-prev", CommitMessageTemplate: "chore(release): {{.Summary}}", Projects: []*config.Project{proj}}
	p := &plan.Plan{Incrs: map[config.ProjectID]*plan.PlanEntry{"p1": {Size: size.Minor, Changelog: changelog.Changelog{changelog.NewPrEntry(&changelog.LoggedPr{Number: 1}, size.Minor)}}}}
	idx := &oldtag.Index{Current: map[config.ProjectID]version.VersionString{"p1": version.MustParse("1.0.0")}, Prev: map[config.ProjectID]version.VersionString{"p1": version.MustParse("1.0.0")}}

	repo := &fakeRepo{}
	r := NewReleaser(repo, fakeVersionWriter{}, fakeChangelogWriter{}, nil, Full, false)
	result, err := r.Run(context.Background(), cfg, p, idx, false)
	if err != nil {
		t.Fatal(err)
	}
	if !repo.commitCalled {
		t.Fatal("expected Full mode to commit")
	}
	if _, ok := repo.committed["VERSION_p1"]; !ok {
		t.Error("expected version file to be staged")
	}
	if _, ok := repo.committed["CHANGELOG_p1"]; !ok {
		t.Error("expected changelog file to be staged")
	}
	wantTags := 2 // the project's own tag + the moved prev-tag
	if len(repo.tagsCreated) != wantTags {
		t.Errorf("expected %d tags created, got %d: %v", wantTags, len(repo.tagsCreated), repo.tagsCreated)
	}
	if result.Decisions[0].Kind != Bump {
		t.Errorf("expected Bump, got %v", result.Decisions[0].Kind)
	}
}

type fakePauseStore struct {
	saved *PendingCommit
}

func (f *fakePauseStore) Save(_ context.Context, pc PendingCommit) error {
	f.saved = &pc
	return nil
}

func TestRunFullModeWithPauseDoesNotCommit(t *testing.T) {
	proj := &config.Project{ID: "p1", Name: "p1", TagPrefix: prefix("")}
	cfg := &config.Config{PrevTagName: "versio-prev", CommitMessageTemplate: "{{.Summary}}", Projects: []*config.Project{proj}}
	p := &plan.Plan{Incrs: map[config.ProjectID]*plan.PlanEntry{"p1": {Size: size.Minor}}}
	idx := &oldtag.Index{Current: map[config.ProjectID]version.VersionString{"p1": version.MustParse("1.0.0")}, Prev: map[config.ProjectID]version.VersionString{"p1": version.MustParse("1.0.0")}}

	repo := &fakeRepo{}
	store := &fakePauseStore{}
	r := NewReleaser(repo, fakeVersionWriter{}, fakeChangelogWriter{}, store, Full, false)
	result, err := r.Run(context.Background(), cfg, p, idx, true)
	if err != nil {
		t.Fatal(err)
	}
	if repo.commitCalled {
		t.Error("expected a paused run not to commit")
	}
	if !result.Paused {
		t.Error("expected result.Paused to be true")
	}
	if store.saved == nil {
		t.Fatal("expected the pause store to receive the pending commit")
	}

	// Resuming should finish the commit+tag step from the saved capsule.
	if err := r.ApplyPending(context.Background(), cfg, *store.saved); err != nil {
		t.Fatal(err)
	}
	if !repo.commitCalled {
		t.Error("expected ApplyPending to commit")
	}
}

func TestRunAbortsOnFailurePoison(t *testing.T) {
	cfg := &config.Config{PrevTagName: "versio-prev", Projects: []*config.Project{{ID: "p1"}}}
	p := &plan.Plan{Incrs: map[config.ProjectID]*plan.PlanEntry{"p1": {Size: size.Failure}}}
	p.Info.FailedCommits = append(p.Info.FailedCommits, plan.FailedCommit{OID: "abc1234"})
	idx := &oldtag.Index{Current: map[config.ProjectID]version.VersionString{}, Prev: map[config.ProjectID]version.VersionString{}}

	repo := &fakeRepo{}
	r := NewReleaser(repo, fakeVersionWriter{}, fakeChangelogWriter{}, nil, Full, false)
	_, err := r.Run(context.Background(), cfg, p, idx, false)
	if err == nil {
		t.Fatal("expected FailedPoison to abort")
	}
	if repo.commitCalled {
		t.Error("expected no commit on a poisoned release")
	}
}
