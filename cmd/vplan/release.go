package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/mdchangelog"
	"github.com/versionplan/versionplan/internal/release"
	"github.com/versionplan/versionplan/internal/versource"
)

var (
	releaseAll       bool
	releaseDry       bool
	releaseChangelog bool
	releaseLocktags  bool
	releasePause     bool
	releaseResume    bool
	releaseAbort     bool
)

// release is the one command exempted from the pause-file startup gate
// (spec.md §4.9/§7): --resume and --abort must work precisely because a
// pause-file is present, so it builds its own *app rather than going
// through requireNotPausedE.
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Compute and apply the next release, or resume/abort a paused one",
	RunE: func(cmd *cobra.Command, args []string) error {
		const op = "release"
		ctx := cmd.Context()

		a, err := newApp(opts)
		if err != nil {
			return err
		}
		store := a.pauseStore()

		if releaseResume && releaseAbort {
			return vperrors.Internal(op, "--resume and --abort are mutually exclusive")
		}

		r := release.NewReleaser(a.repo, versource.New(a.repoRoot), mdchangelog.New(a.repoRoot), store, modeFor(releaseDry, releaseChangelog), releaseLocktags)

		if releaseAbort {
			if err := store.Abort(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "paused release aborted")
			return nil
		}

		if releaseResume {
			cfg := a.cfg
			pending, err := store.Resume()
			if err != nil {
				return err
			}
			if err := r.ApplyPending(ctx, cfg, pending); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "paused release applied")
			return nil
		}

		if err := store.RequirePresent(); err != nil {
			return err
		}
		if err := a.checkBranch(ctx); err != nil {
			return err
		}

		p, err := a.buildPlan(ctx)
		if err != nil {
			return err
		}
		idx, err := a.oldTagIndex(ctx)
		if err != nil {
			return err
		}

		result, err := r.Run(ctx, a.cfg, p, idx, releasePause)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, line := range result.NoChangeLines {
			fmt.Fprintln(out, line)
		}
		for _, d := range result.Decisions {
			fmt.Fprintf(out, "%s: %s -> %s\n", d.Project.Name, d.Kind, d.Output)
		}
		if result.Paused {
			fmt.Fprintln(out, "release paused; run `release --resume` to finish or `release --abort` to discard")
		}
		return nil
	},
}

// modeFor resolves the --dry/--changelog flags into an EngagementMode,
// defaulting to release.Full when neither is set.
func modeFor(dry, changelogOnly bool) release.EngagementMode {
	switch {
	case dry:
		return release.Dry
	case changelogOnly:
		return release.ChangelogOnly
	default:
		return release.Full
	}
}

func init() {
	releaseCmd.Flags().BoolVar(&releaseAll, "all", false, "release every configured project (the default; accepted for CLI-surface symmetry with plan --id)")
	releaseCmd.Flags().BoolVar(&releaseDry, "dry", false, "report decisions only; write nothing")
	releaseCmd.Flags().BoolVar(&releaseChangelog, "changelog", false, "write changelog files but make no commit or tag")
	releaseCmd.Flags().BoolVar(&releaseLocktags, "locktags", false, "treat every project's current tag as locked")
	releaseCmd.Flags().BoolVar(&releasePause, "pause", false, "write the pending commit to the pause-file instead of committing")
	releaseCmd.Flags().BoolVar(&releaseResume, "resume", false, "finish a previously paused release")
	releaseCmd.Flags().BoolVar(&releaseAbort, "abort", false, "discard a previously paused release")
}
