package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/config"
	"github.com/versionplan/versionplan/internal/oldtag"
	"github.com/versionplan/versionplan/internal/version"
)

var (
	selID, selName, selExact string
	wideOutput, versOnly, prevVersion bool
)

func resolveVersion(idx *oldtag.Index, id config.ProjectID, prev bool) (version.VersionString, bool) {
	if prev {
		v, ok := idx.Prev[id]
		return v, ok
	}
	v, ok := idx.Current[id]
	return v, ok
}

func printProject(cmd *cobra.Command, p *config.Project, idx *oldtag.Index, wide, versOnly, prev bool) {
	v, ok := resolveVersion(idx, p.ID, prev)
	vstr := "unknown"
	if ok {
		vstr = v.String()
	}
	if versOnly {
		fmt.Fprintln(cmd.OutOrStdout(), vstr)
		return
	}
	if !wide {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.ID, p.Name, vstr)
		return
	}
	prefix := "(none)"
	if p.TagPrefix != nil {
		prefix = *p.TagPrefix
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\troot=%s\ttag_prefix=%s\n", p.ID, p.Name, vstr, p.Root, prefix)
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print one project's current (or previous) version",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		p, err := a.selectProject(selID, selName, selExact)
		if err != nil {
			return err
		}
		idx, err := a.oldTagIndex(ctx)
		if err != nil {
			return err
		}
		printProject(cmd, p, idx, wideOutput, versOnly, prevVersion)
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every project's current (or previous) version",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		idx, err := a.oldTagIndex(ctx)
		if err != nil {
			return err
		}
		for _, p := range a.cfg.Projects {
			printProject(cmd, p, idx, wideOutput, versOnly, prevVersion)
		}
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{getCmd, showCmd} {
		c.Flags().BoolVar(&wideOutput, "wide", false, "show extra project fields")
		c.Flags().BoolVar(&prevVersion, "prev", false, "show the previous-release version instead of current")
	}
	getCmd.Flags().StringVar(&selID, "id", "", "select project by exact id")
	getCmd.Flags().StringVar(&selName, "name", "", "select project by name substring")
	getCmd.Flags().StringVar(&selExact, "exact", "", "select project by exact name")
	getCmd.Flags().BoolVar(&versOnly, "versonly", false, "print only the version string")
}
