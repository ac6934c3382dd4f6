package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/release"
	"github.com/versionplan/versionplan/internal/restriction"
	"github.com/versionplan/versionplan/internal/size"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show each project's computed version decision without writing anything",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()

		idx, err := a.oldTagIndex(ctx)
		if err != nil {
			return err
		}
		p, err := a.buildPlan(ctx)
		if err != nil {
			return err
		}
		if p.HasFailure() {
			fmt.Fprintln(cmd.OutOrStdout(), "unparseable conventional commit(s):", p.FailedShortOIDsMessage())
		}

		for _, proj := range a.cfg.Projects {
			planSize := size.Empty
			if entry, ok := p.Incrs[proj.ID]; ok {
				planSize = entry.Size
			}
			curt := idx.Current[proj.ID]
			prev, hasPrev := idx.Prev[proj.ID]

			restrictions, err := restriction.Parse(proj.Restrictions)
			if err != nil {
				return err
			}
			d, err := release.Decide(proj, hasPrev, prev, curt, planSize, false, restrictions)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s -> %s\t%s\n", proj.Name, curt, d.Output, d.Kind)
		}
		return nil
	}),
}
