package main

import (
	"bytes"
	"text/template"

	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/plan"
	"github.com/versionplan/versionplan/internal/size"
	vperrors "github.com/versionplan/versionplan/internal/errors"
)

// projectPlanView is the data a `plan`/`template` render sees for one
// project: its id/name, computed size, and a flat list of included
// commit summaries, in display order.
type projectPlanView struct {
	ID      string
	Name    string
	Size    string
	Commits []string
}

func buildPlanViews(cfg *config.Config, p *plan.Plan) []projectPlanView {
	views := make([]projectPlanView, 0, len(cfg.Projects))
	for _, proj := range cfg.Projects {
		entry, ok := p.Incrs[proj.ID]
		s := size.Empty
		var commits []string
		if ok {
			s = entry.Size
			for _, e := range entry.Changelog {
				if e.Pr == nil {
					continue
				}
				for _, c := range e.Pr.Commits {
					if c.Included() {
						commits = append(commits, c.Summary)
					}
				}
			}
		}
		views = append(views, projectPlanView{ID: string(proj.ID), Name: proj.Name, Size: s.String(), Commits: commits})
	}
	return views
}

// renderTemplate executes tmplText (text/template syntax, matching
// internal/release's commit-message renderer) against data and returns
// the rendered string.
func renderTemplate(op, tmplText string, data any) (string, error) {
	t, err := template.New("vplan-render").Parse(tmplText)
	if err != nil {
		return "", vperrors.Internal(op, "failed to parse template: "+err.Error())
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", vperrors.Internal(op, "failed to render template: "+err.Error())
	}
	return buf.String(), nil
}
