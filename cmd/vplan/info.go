package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/config"
)

var (
	infoIDs, infoNames, infoExacts, infoLabels []string
	infoShowID, infoShowName, infoShowRoot     bool
	infoShowVersion, infoShowFullVersion       bool
	infoShowTagPrefix, infoShowAll             bool
)

func infoMatches(p *config.Project) bool {
	anySelector := len(infoIDs) > 0 || len(infoNames) > 0 || len(infoExacts) > 0
	selected := !anySelector
	for _, id := range infoIDs {
		if string(p.ID) == id {
			selected = true
		}
	}
	for _, n := range infoNames {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(n)) {
			selected = true
		}
	}
	for _, n := range infoExacts {
		if p.Name == n {
			selected = true
		}
	}
	if !selected {
		return false
	}
	for _, l := range infoLabels {
		if !p.HasLabel(l) {
			return false
		}
	}
	return true
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print selected fields for projects matching the given selectors",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()

		showAll := infoShowAll
		needVersion := showAll || infoShowVersion || infoShowFullVersion

		var versions map[config.ProjectID]string
		if needVersion {
			oi, err := a.oldTagIndex(ctx)
			if err != nil {
				return err
			}
			versions = make(map[config.ProjectID]string, len(oi.Current))
			for id, v := range oi.Current {
				versions[id] = v.String()
			}
		}

		for _, p := range a.cfg.Projects {
			if !infoMatches(p) {
				continue
			}
			var fields []string
			if showAll || infoShowID {
				fields = append(fields, string(p.ID))
			}
			if showAll || infoShowName {
				fields = append(fields, p.Name)
			}
			if showAll || infoShowRoot {
				fields = append(fields, p.Root)
			}
			if showAll || infoShowVersion || infoShowFullVersion {
				fields = append(fields, versions[p.ID])
			}
			if showAll || infoShowTagPrefix {
				prefix := "(none)"
				if p.TagPrefix != nil {
					prefix = *p.TagPrefix
				}
				fields = append(fields, prefix)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fields, "\t"))
		}
		return nil
	}),
}

func init() {
	infoCmd.Flags().StringSliceVar(&infoIDs, "id", nil, "match project by exact id (repeatable)")
	infoCmd.Flags().StringSliceVar(&infoNames, "name", nil, "match project by name substring (repeatable)")
	infoCmd.Flags().StringSliceVar(&infoExacts, "exact", nil, "match project by exact name (repeatable)")
	infoCmd.Flags().StringSliceVar(&infoLabels, "label", nil, "require project to carry this label (repeatable, AND'd)")
	infoCmd.Flags().BoolVar(&infoShowID, "show-id", false, "include the project id")
	infoCmd.Flags().BoolVar(&infoShowName, "show-name", false, "include the project name")
	infoCmd.Flags().BoolVar(&infoShowRoot, "show-root", false, "include the project root path")
	infoCmd.Flags().BoolVar(&infoShowVersion, "show-version", false, "include the current version")
	infoCmd.Flags().BoolVar(&infoShowFullVersion, "show-full-version", false, "include the current version")
	infoCmd.Flags().BoolVar(&infoShowTagPrefix, "show-tag-prefix", false, "include the tag prefix")
	infoCmd.Flags().BoolVar(&infoShowAll, "all", false, "include every field")
}
