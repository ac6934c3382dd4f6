// Package versource implements release.VersionWriter against a
// project's configured VersionSourceLocator, the way the teacher's
// internal/service/version.ServiceImpl reads/writes a project's version
// from either a tagged ref or an in-tree file.
package versource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/version"
)

// dependencyLockFile is where a downstream project's chain-write
// references live: a flat JSON map of upstream project id to the
// version last observed for it. spec.md leaves the embedded-reference
// format to the (external) renderer; this is the planner's own choice
// when no renderer is wired in.
const dependencyLockFile = "DEPENDENCIES.lock.json"

// Writer reads and rewrites version sources against a repository
// working tree rooted at Root.
type Writer struct {
	Root string
}

// New constructs a Writer rooted at repoRoot.
func New(repoRoot string) *Writer {
	return &Writer{Root: repoRoot}
}

// WriteVersion renders proj's version source with v substituted in,
// per its configured Pattern (single capture group) or JSONField
// (dotted path). A project with neither returns an empty path, meaning
// Releaser has nothing to stage for it.
func (w *Writer) WriteVersion(proj *config.Project, v version.VersionString) (string, []byte, error) {
	const op = "versource.WriteVersion"

	src := proj.VersionSource
	if src.File == "" || (src.Pattern == "" && src.JSONField == "") {
		return "", nil, nil
	}

	fullPath := filepath.Join(w.Root, src.File)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", nil, vperrors.VCSIOWrap(err, op, "failed to read version source "+src.File)
	}

	var out []byte
	if src.JSONField != "" {
		out, err = setJSONField(data, src.JSONField, v.String())
	} else {
		out, err = replacePattern(data, src.Pattern, v.String())
	}
	if err != nil {
		return "", nil, vperrors.Internal(op, fmt.Sprintf("failed to render version source %s: %v", src.File, err))
	}
	return src.File, out, nil
}

// WriteChainRef rewrites downstream's dependency lock file to record
// upstream's new version, independent of whether downstream itself bumped.
func (w *Writer) WriteChainRef(downstream, upstream *config.Project, upstreamVersion version.VersionString) (string, []byte, error) {
	const op = "versource.WriteChainRef"

	relPath := filepath.Join(downstream.Root, dependencyLockFile)
	fullPath := filepath.Join(w.Root, relPath)

	deps := map[string]string{}
	if existing, err := os.ReadFile(fullPath); err == nil {
		_ = json.Unmarshal(existing, &deps)
	}
	deps[string(upstream.ID)] = upstreamVersion.String()

	out, err := json.MarshalIndent(deps, "", "  ")
	if err != nil {
		return "", nil, vperrors.Internal(op, "failed to marshal dependency lock file")
	}
	out = append(out, '\n')
	return relPath, out, nil
}

// setJSONField decodes data as a JSON object, walks dotted path
// (creating intermediate objects if missing), sets the leaf to value,
// and re-encodes with indentation.
func setJSONField(data []byte, path, value string) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	segs := strings.Split(path, ".")
	cursor := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cursor[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cursor[seg] = next
		}
		cursor = next
	}
	cursor[segs[len(segs)-1]] = value

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// replacePattern compiles pattern (which must have exactly one capture
// group) and splices value into that group's span, leaving the rest of
// data byte-for-byte untouched.
func replacePattern(data []byte, pattern, value string) ([]byte, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	loc := re.FindSubmatchIndex(data)
	if loc == nil || len(loc) < 4 {
		return nil, fmt.Errorf("pattern %q did not match", pattern)
	}
	groupStart, groupEnd := loc[2], loc[3]

	out := make([]byte, 0, len(data)-(groupEnd-groupStart)+len(value))
	out = append(out, data[:groupStart]...)
	out = append(out, value...)
	out = append(out, data[groupEnd:]...)
	return out, nil
}
