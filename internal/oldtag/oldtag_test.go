package oldtag

import (
	"context"
	"testing"

	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/tagscan"
	"github.com/versionplan/versionplan/internal/vcs"
	"github.com/versionplan/versionplan/internal/version"
)

type fakeRepo struct {
	head        vcs.CommitOID
	commits     []vcs.CommitInfo
	prevPeel    vcs.CommitOID
	prevPeelErr error
	annotation  string
	annotated   bool
}

func (f *fakeRepo) CurrentBranch(context.Context) (string, error) { panic("unused") }
func (f *fakeRepo) HeadOID(context.Context) (vcs.CommitOID, error) { return f.head, nil }
func (f *fakeRepo) WalkCommits(context.Context, vcs.CommitOID, vcs.CommitOID, bool) ([]vcs.CommitInfo, error) {
	return f.commits, nil
}
func (f *fakeRepo) BlobAtRevision(context.Context, vcs.CommitOID, string) ([]byte, error) {
	panic("unused")
}
func (f *fakeRepo) ListTags(context.Context, string) ([]vcs.TagName, error) { panic("unused") }
func (f *fakeRepo) PeelTag(context.Context, vcs.TagName) (vcs.CommitOID, error) {
	return f.prevPeel, f.prevPeelErr
}
func (f *fakeRepo) TagAnnotation(context.Context, vcs.TagName) (string, bool, error) {
	return f.annotation, f.annotated, nil
}
func (f *fakeRepo) CreateAnnotatedTag(context.Context, vcs.TagName, vcs.CommitOID, string) error {
	panic("unused")
}
func (f *fakeRepo) CommitFiles(context.Context, string, map[string][]byte) (vcs.CommitOID, error) {
	panic("unused")
}

var _ vcs.Repository = (*fakeRepo)(nil)

func TestBuildCurrentFromTagIndex(t *testing.T) {
	repo := &fakeRepo{
		head:     "c3",
		commits:  []vcs.CommitInfo{{OID: "c3"}, {OID: "c2"}, {OID: "c1"}},
		prevPeel: "c1",
	}
	idx := tagscan.Index{
		"svc-a": {"c2": {{Tag: "v1.1.0"}}},
	}
	out, err := Build(context.Background(), repo, "versio-prev", idx, []*config.Project{{ID: "svc-a"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.Current["svc-a"]; !ok {
		t.Fatal("expected svc-a to have a current version")
	}
}

func TestBuildPrevFromAnnotationWithPGPClip(t *testing.T) {
	repo := &fakeRepo{
		head:       "c1",
		commits:    []vcs.CommitInfo{{OID: "c1"}},
		prevPeel:   "c1",
		annotation: `{"versions":{"svc-a":"1.0.0"}}` + pgpSignatureMarker + "\n...sig...",
		annotated:  true,
	}
	out, err := Build(context.Background(), repo, "versio-prev", tagscan.Index{}, []*config.Project{{ID: "svc-a"}})
	if err != nil {
		t.Fatal(err)
	}
	v, ok := out.Prev["svc-a"]
	if !ok || v.String() != "1.0.0" {
		t.Fatalf("expected prev svc-a=1.0.0, got %v ok=%v", v, ok)
	}
}

func TestBuildMissingAnnotationLeavesPrevEmpty(t *testing.T) {
	repo := &fakeRepo{head: "c1", commits: []vcs.CommitInfo{{OID: "c1"}}, prevPeel: "c1", annotated: false}
	out, err := Build(context.Background(), repo, "versio-prev", tagscan.Index{}, []*config.Project{{ID: "svc-a"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Prev) != 0 {
		t.Errorf("expected empty prev, got %v", out.Prev)
	}
}

func TestSerializeAnnotationRoundTrip(t *testing.T) {
	body, err := SerializeAnnotation(map[config.ProjectID]version.VersionString{
		"svc-a": version.MustParse("1.2.3"),
	})
	if err != nil {
		t.Fatal(err)
	}
	payload, err := parseAnnotation(body)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Versions["svc-a"] != "1.2.3" {
		t.Errorf("round trip mismatch: %v", payload)
	}
}
