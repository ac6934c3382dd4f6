package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/cliapp"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/version"
	"github.com/versionplan/versionplan/internal/versource"
)

var (
	setID, setName, setExact string
	setOnly                  bool
)

var setCmd = &cobra.Command{
	Use:   "set VALUE",
	Short: "Manually set a project's version source to VALUE",
	Args:  cobra.ExactArgs(1),
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		const op = "set"

		v, err := version.Parse(args[0])
		if err != nil {
			return vperrors.VersionParseWrap(err, op, "invalid version "+args[0])
		}

		idFlag, nameFlag, exactFlag := setID, setName, setExact
		if setOnly {
			idFlag, nameFlag, exactFlag = "", "", ""
		}
		p, err := a.selectProject(idFlag, nameFlag, exactFlag)
		if err != nil {
			return err
		}

		w := versource.New(a.repoRoot)
		path, content, err := w.WriteVersion(p, v)
		if err != nil {
			return err
		}
		if path == "" {
			return vperrors.Internal(op, fmt.Sprintf("project %q has no in-tree version source to write", p.ID))
		}
		if _, err := a.repo.CommitFiles(cmd.Context(), fmt.Sprintf("chore: set %s to %s", p.Name, v), map[string][]byte{path: content}); err != nil {
			return vperrors.VCSIOWrap(err, op, "failed to commit version-source edit")
		}
		fmt.Fprintln(cmd.OutOrStdout(), cliapp.Styles.Success.Render(fmt.Sprintf("%s: %s", p.Name, v)))
		return nil
	}),
}

func init() {
	setCmd.Flags().StringVar(&setID, "id", "", "select project by exact id")
	setCmd.Flags().StringVar(&setName, "name", "", "select project by name substring")
	setCmd.Flags().StringVar(&setExact, "exact", "", "select project by exact name")
	setCmd.Flags().BoolVar(&setOnly, "only", false, "select the repo's single configured project")
}
