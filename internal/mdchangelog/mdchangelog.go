// Package mdchangelog implements release.ChangelogWriter, rendering a
// project's ordered changelog.Changelog into a Keep-a-Changelog-style
// markdown section and prepending it to the project's CHANGELOG.md, the
// way the teacher's internal/infrastructure/template.Service renders
// named templates against domain data.
package mdchangelog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/versionplan/versionplan/internal/changelog"
	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/release"
)

const sectionTemplate = `## [{{.Version}}] - {{.Date}}

{{range .Entries}}{{if .IsDep}}- **{{.UpstreamName}}** dependency updated
{{else}}- {{.Summary}} ({{.ShortOID}})
{{end}}{{end}}
`

var tmpl = template.Must(template.New("changelog-section").Parse(sectionTemplate))

type entryView struct {
	IsDep        bool
	UpstreamName string
	Summary      string
	ShortOID     string
}

type sectionView struct {
	Version string
	Date    string
	Entries []entryView
}

// Writer renders changelog sections into each project's CHANGELOG.md,
// resolved relative to repoRoot, falling back to "<root>/CHANGELOG.md"
// when a project sets no ChangelogPath.
type Writer struct {
	Root string
	// Now supplies the release date stamped on each new section. Tests
	// inject a fixed clock; production wiring passes time.Now.
	Now func() time.Time
}

// New constructs a Writer rooted at repoRoot, dating sections with time.Now.
func New(repoRoot string) *Writer {
	return &Writer{Root: repoRoot, Now: time.Now}
}

// WriteChangelog renders entries ordered by changelog.Reorder and
// prepends the resulting section to proj's changelog file.
func (w *Writer) WriteChangelog(proj *config.Project, entries changelog.Changelog, d release.Decision) (string, []byte, error) {
	const op = "mdchangelog.WriteChangelog"

	relPath := "CHANGELOG.md"
	if proj.ChangelogPath != nil && *proj.ChangelogPath != "" {
		relPath = *proj.ChangelogPath
	} else if proj.Root != "" {
		relPath = filepath.Join(proj.Root, "CHANGELOG.md")
	}

	ordered := changelog.Reorder(entries)
	view := sectionView{Version: d.Output.String(), Date: w.Now().Format("2006-01-02")}
	for _, e := range ordered {
		if e.Kind == changelog.EntryDep {
			view.Entries = append(view.Entries, entryView{IsDep: true, UpstreamName: e.UpstreamName})
			continue
		}
		for _, c := range e.Pr.Commits {
			if !c.Included() {
				continue
			}
			view.Entries = append(view.Entries, entryView{Summary: c.Summary, ShortOID: string(c.OID.ShortOID())})
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", nil, vperrors.Internal(op, "failed to render changelog section: "+err.Error())
	}

	fullPath := filepath.Join(w.Root, relPath)
	existing, err := os.ReadFile(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return "", nil, vperrors.VCSIOWrap(err, op, "failed to read existing changelog "+relPath)
	}

	var out strings.Builder
	out.WriteString("# Changelog\n\n")
	out.WriteString(buf.String())
	if len(existing) > 0 {
		out.WriteString("\n")
		out.Write(trimLeadingHeader(existing))
	}
	return relPath, []byte(out.String()), nil
}

// trimLeadingHeader drops an existing "# Changelog" title line so
// repeated releases don't accumulate duplicate top-level headers.
func trimLeadingHeader(data []byte) []byte {
	const header = "# Changelog"
	trimmed := bytes.TrimLeft(data, "\n")
	if bytes.HasPrefix(trimmed, []byte(header)) {
		if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
			return bytes.TrimLeft(trimmed[i+1:], "\n")
		}
		return nil
	}
	return data
}
