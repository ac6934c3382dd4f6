package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vperrors "github.com/versionplan/versionplan/internal/errors"
)

const defaultPlanTemplate = `{{range .}}{{.Name}}: {{.Size}}
{{range .Commits}}  - {{.}}
{{end}}{{end}}`

var (
	planProjectID string
	planTemplate  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Render the computed plan, optionally through a custom template",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		const op = "plan"
		ctx := cmd.Context()

		p, err := a.buildPlan(ctx)
		if err != nil {
			return err
		}
		views := buildPlanViews(a.cfg, p)
		if planProjectID != "" {
			var filtered []projectPlanView
			for _, v := range views {
				if v.ID == planProjectID {
					filtered = append(filtered, v)
				}
			}
			if len(filtered) == 0 {
				return vperrors.NoSuchProject(op, fmt.Sprintf("no project with id %q", planProjectID))
			}
			views = filtered
		}

		tmplText := defaultPlanTemplate
		if planTemplate != "" {
			tmplText = planTemplate
		}
		out, err := renderTemplate(op, tmplText, views)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}),
}

func init() {
	planCmd.Flags().StringVar(&planProjectID, "id", "", "restrict the rendered plan to one project id")
	planCmd.Flags().StringVar(&planTemplate, "template", "", "render with this text/template string instead of the default")
}
