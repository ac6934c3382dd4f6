package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the working-tree files each project's coverage globs match",
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		return filepath.WalkDir(a.repoRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(a.repoRoot, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if strings.HasPrefix(rel, ".git") {
					return filepath.SkipDir
				}
				return nil
			}
			for _, p := range a.cfg.Projects {
				if p.Covered(rel) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, rel)
				}
			}
			return nil
		})
	}),
}
