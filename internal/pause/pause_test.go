package pause

import (
	"context"
	"testing"

	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/release"
	"github.com/versionplan/versionplan/internal/version"
)

func TestSaveLoadResumeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	proj := &config.Project{ID: "p1", Name: "p1"}
	cfg := &config.Config{Projects: []*config.Project{proj}}
	store := NewStore(dir, cfg)

	pc := release.PendingCommit{
		Message: "chore(release): bump p1",
		Files:   map[string][]byte{"VERSION": []byte("1.1.0")},
		Versions: map[config.ProjectID]version.VersionString{
			"p1": version.MustParse("1.1.0"),
		},
		ChainWrites: []plan.ChainWrite{{Upstream: "p1", Downstream: "p2"}},
		Decisions: []release.Decision{
			{Project: proj, Kind: release.Bump, Output: version.MustParse("1.1.0")},
		},
	}

	if err := store.Save(context.Background(), pc); err != nil {
		t.Fatal(err)
	}
	if !store.Present() {
		t.Fatal("expected pause-file to be present after Save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Message != pc.Message {
		t.Errorf("message mismatch: got %q", loaded.Message)
	}
	if string(loaded.Files["VERSION"]) != "1.1.0" {
		t.Errorf("file content mismatch: got %q", loaded.Files["VERSION"])
	}
	if loaded.Versions["p1"] != version.MustParse("1.1.0") {
		t.Errorf("version mismatch: got %v", loaded.Versions["p1"])
	}
	if len(loaded.ChainWrites) != 1 || loaded.ChainWrites[0].Downstream != "p2" {
		t.Errorf("chain-writes mismatch: got %v", loaded.ChainWrites)
	}
	if len(loaded.Decisions) != 1 || loaded.Decisions[0].Kind != release.Bump {
		t.Errorf("decisions mismatch: got %v", loaded.Decisions)
	}

	resumed, err := store.Resume()
	if err != nil {
		t.Fatal(err)
	}
	if resumed.Message != pc.Message {
		t.Errorf("resumed message mismatch: got %q", resumed.Message)
	}
	if store.Present() {
		t.Error("expected pause-file to be removed after Resume")
	}
}

func TestAbortRemovesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	store := NewStore(dir, cfg)

	if err := store.Abort(); err == nil {
		t.Fatal("expected Abort to fail when no pause-file exists")
	}

	if err := store.Save(context.Background(), release.PendingCommit{Message: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Abort(); err != nil {
		t.Fatal(err)
	}
	if store.Present() {
		t.Error("expected pause-file to be gone after Abort")
	}
}

func TestRequirePresentErrorsWhenPaused(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	store := NewStore(dir, cfg)

	if err := store.RequirePresent(); err != nil {
		t.Fatal("expected no error when not paused")
	}
	if err := store.Save(context.Background(), release.PendingCommit{Message: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := store.RequirePresent(); err == nil {
		t.Fatal("expected paused-state error")
	}
}
