// Package oldtag implements OldTagIndex (C3): per-project current
// (latest-tagged) and prev (as-of-last-release) versions.
package oldtag

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/tagscan"
	"github.com/versionplan/versionplan/internal/vcs"
	"github.com/versionplan/versionplan/internal/version"
)

// pgpSignatureMarker is where a trailing PGP signature block begins in
// a prev-tag annotation; anything from here on is clipped before the
// remainder is parsed as JSON.
const pgpSignatureMarker = "\n-----BEGIN PGP SIGNATURE-----"

// Index holds the two version maps OldTagIndex produces.
type Index struct {
	// Current is the latest version tagged for each project, derived by
	// walking commits from HEAD back to the prev-tag.
	Current map[config.ProjectID]version.VersionString
	// Prev is the per-project version payload carried in the prev-tag's
	// annotation, as of the last release.
	Prev map[config.ProjectID]version.VersionString
}

// prevPayload is the JSON shape of a prev-tag annotation body.
type prevPayload struct {
	Versions map[string]string `json:"versions"`
}

// Build walks HEAD back to prevTagName (inclusive) recording each
// project's first (newest) tagged version, then fills prev from the
// prev-tag's annotation.
func Build(ctx context.Context, repo vcs.Repository, prevTagName string, idx tagscan.Index, projects []*config.Project) (*Index, error) {
	const op = "oldtag.Build"

	head, err := repo.HeadOID(ctx)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to resolve HEAD")
	}

	var prevOID vcs.CommitOID
	if peeled, err := repo.PeelTag(ctx, vcs.TagName(prevTagName)); err == nil {
		prevOID = peeled
	}

	commits, err := repo.WalkCommits(ctx, head, prevOID, false)
	if err != nil {
		return nil, vperrors.VCSIOWrap(err, op, "failed to walk commits to prev-tag")
	}

	remaining := make(map[config.ProjectID]struct{}, len(projects))
	for _, p := range projects {
		remaining[p.ID] = struct{}{}
	}

	current := make(map[config.ProjectID]version.VersionString)
	for _, c := range commits {
		if len(remaining) == 0 {
			break
		}
		for pid := range remaining {
			if best, ok := idx.Best(pid, c.OID); ok {
				current[pid] = best.Version
				delete(remaining, pid)
			}
		}
	}

	prev := make(map[config.ProjectID]version.VersionString)
	if prevOID != "" {
		body, ok, err := repo.TagAnnotation(ctx, vcs.TagName(prevTagName))
		if err != nil {
			return nil, vperrors.TagResolveWrap(err, op, "failed to read prev-tag annotation")
		}
		if ok {
			payload, err := parseAnnotation(body)
			if err != nil {
				return nil, vperrors.TagResolveWrap(err, op, "failed to parse prev-tag annotation")
			}
			for id, raw := range payload.Versions {
				v, err := version.Parse(raw)
				if err != nil {
					return nil, vperrors.VersionParseWrap(err, op, "invalid version in prev-tag annotation for "+id)
				}
				prev[config.ProjectID(id)] = v
			}
		}
	}

	return &Index{Current: current, Prev: prev}, nil
}

// parseAnnotation clips a trailing PGP signature block, if present,
// then decodes the remainder as JSON.
func parseAnnotation(body string) (prevPayload, error) {
	if i := strings.Index(body, pgpSignatureMarker); i >= 0 {
		body = body[:i]
	}
	var payload prevPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return prevPayload{}, err
	}
	return payload, nil
}

// SerializeAnnotation renders the annotation body Releaser writes into
// a new prev-tag, the inverse of parseAnnotation without a signature.
func SerializeAnnotation(versions map[config.ProjectID]version.VersionString) (string, error) {
	payload := prevPayload{Versions: make(map[string]string, len(versions))}
	for id, v := range versions {
		payload.Versions[string(id)] = v.String()
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
