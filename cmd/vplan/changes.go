package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/changelog"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Print the changelog entries computed for every project since the last release",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()

		p, err := a.buildPlan(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, proj := range a.cfg.Projects {
			entry, ok := p.Incrs[proj.ID]
			if !ok || len(entry.Changelog) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s (%s):\n", proj.Name, entry.Size)
			for _, e := range entry.Changelog {
				if e.Kind == changelog.EntryDep {
					fmt.Fprintf(out, "  dep: %s\n", e.UpstreamName)
					continue
				}
				for _, c := range e.Pr.Commits {
					if !c.Included() {
						continue
					}
					fmt.Fprintf(out, "  #%d %s (%s)\n", e.Pr.Number, c.Summary, c.OID.ShortOID())
				}
			}
		}
		if len(p.Ineffective) > 0 {
			fmt.Fprintf(out, "ineffective PRs: %d\n", len(p.Ineffective))
		}
		if p.HasFailure() {
			fmt.Fprintln(out, "unparseable:", p.FailedShortOIDsMessage())
		}
		return nil
	}),
}
