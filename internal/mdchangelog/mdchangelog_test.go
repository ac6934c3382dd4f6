package mdchangelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/release"
	"github.com/versionplan/versionplan/internal/size"
	"github.com/versionplan/versionplan/internal/version"
)

func fixedNow() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }

func TestWriteChangelogRendersNewSectionFirst(t *testing.T) {
	w := &Writer{Root: t.TempDir(), Now: fixedNow}
	proj := &config.Project{ID: "svc-a", Name: "svc-a"}
	entries := changelog.Changelog{
		changelog.NewPrEntry(&changelog.LoggedPr{
			Number: 7, DiscoveryOrder: 0,
			Commits: []changelog.LoggedCommit{{OID: "abcdef1234", Summary: "add widget", Applies: true, Size: size.Minor}},
		}, size.Minor),
	}
	d := release.Decision{Project: proj, Kind: release.Bump, Output: version.MustParse("1.1.0")}

	path, content, err := w.WriteChangelog(proj, entries, d)
	if err != nil {
		t.Fatal(err)
	}
	if path != "CHANGELOG.md" {
		t.Fatalf("unexpected path %q", path)
	}
	out := string(content)
	if !strings.Contains(out, "## [1.1.0] - 2026-01-15") {
		t.Fatalf("expected dated section header, got %s", out)
	}
	if !strings.Contains(out, "add widget") {
		t.Fatalf("expected commit summary in section, got %s", out)
	}
}

func TestWriteChangelogPrependsWithoutDuplicateTitle(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Root: dir, Now: fixedNow}
	proj := &config.Project{ID: "svc-a", Name: "svc-a"}
	d := release.Decision{Project: proj, Kind: release.Bump, Output: version.MustParse("1.0.0")}

	_, first, err := w.WriteChangelog(proj, nil, d)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(first), "# Changelog") != 1 {
		t.Fatalf("expected exactly one title on first write, got %s", first)
	}
	if err := os.WriteFile(filepath.Join(dir, "CHANGELOG.md"), first, 0o644); err != nil {
		t.Fatal(err)
	}

	d.Output = version.MustParse("1.1.0")
	_, second, err := w.WriteChangelog(proj, nil, d)
	if err != nil {
		t.Fatal(err)
	}
	out := string(second)
	if strings.Count(out, "# Changelog") != 1 {
		t.Fatalf("expected exactly one title after prepending, got %s", out)
	}
	newIdx, oldIdx := strings.Index(out, "## [1.1.0]"), strings.Index(out, "## [1.0.0]")
	if newIdx < 0 || oldIdx < 0 || newIdx > oldIdx {
		t.Fatalf("expected the 1.1.0 section before the 1.0.0 section, got %s", out)
	}
}
