package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/cliapp"
	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/plan"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file and the project dependency graph",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := plan.Propagate(&plan.Plan{Incrs: map[config.ProjectID]*plan.PlanEntry{}}, a.cfg.Projects); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cliapp.Styles.Success.Render(fmt.Sprintf("ok: %d project(s), dependency graph is acyclic", len(a.cfg.Projects))))
		return nil
	}),
}
