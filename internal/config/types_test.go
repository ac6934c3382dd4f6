package config

import (
	"testing"

	"github.com/versionplan/versionplan/internal/size"
)

func TestProjectCovered(t *testing.T) {
	p := &Project{
		Covers:   []string{"svc-a/**"},
		Excludes: []string{"svc-a/vendor/**"},
	}
	cases := []struct {
		path string
		want bool
	}{
		{"svc-a/main.go", true},
		{"svc-a/pkg/x.go", true},
		{"svc-a", true},
		{"svc-b/main.go", false},
		{"svc-a/vendor/dep.go", false},
	}
	for _, c := range cases {
		if got := p.Covered(c.path); got != c.want {
			t.Errorf("Covered(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestProjectSizeFor(t *testing.T) {
	p := &Project{
		SizeRules:       map[string]size.Size{"feat": size.Minor, "fix": size.Patch},
		DefaultSizeRule: size.None,
	}
	if p.SizeFor("feat") != size.Minor {
		t.Error("expected feat -> minor")
	}
	if p.SizeFor("chore") != size.None {
		t.Error("expected unmapped kind to fall back to default")
	}
}

func TestTagPatternsNoPrefix(t *testing.T) {
	p := &Project{}
	if got := p.TagPatterns(); got != nil {
		t.Errorf("expected nil patterns for no tag prefix, got %v", got)
	}
}

func TestTagPatternsEmptyPrefix(t *testing.T) {
	empty := ""
	p := &Project{TagPrefix: &empty, TagPrefixSeparator: "/"}
	got := p.TagPatterns()
	if len(got) != 1 || got[0] != "v*" {
		t.Errorf("TagPatterns() = %v, want [v*]", got)
	}
}

func TestTagPatternsWithPrefix(t *testing.T) {
	prefix := "svc-a"
	p := &Project{TagPrefix: &prefix, TagPrefixSeparator: "/"}
	got := p.TagPatterns()
	if len(got) != 1 || got[0] != "svc-a/v*" {
		t.Errorf("TagPatterns() = %v, want [svc-a/v*]", got)
	}
}

func TestTagPatternsWithMajors(t *testing.T) {
	prefix := "svc-a"
	p := &Project{TagPrefix: &prefix, TagPrefixSeparator: "/", TagMajors: []uint64{1, 2}}
	got := p.TagPatterns()
	if len(got) != 2 || got[0] != "svc-a/v1.*" || got[1] != "svc-a/v2.*" {
		t.Errorf("TagPatterns() = %v", got)
	}
}

func TestSizeMapperConvert(t *testing.T) {
	m := SizeMapper{size.Major: size.Patch}
	if m.Convert(size.Major) != size.Patch {
		t.Error("expected mapped conversion")
	}
	if m.Convert(size.Minor) != size.Empty {
		t.Error("expected unmapped input to drop to Empty")
	}
	id := IdentitySizeMapper()
	if id.Convert(size.Minor) != size.Minor {
		t.Error("expected identity mapper to pass through")
	}
}
