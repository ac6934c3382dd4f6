package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/versionplan/versionplan/internal/cliapp"
)

var opts cliapp.Options

var rootCmd = &cobra.Command{
	Use:   "vplan",
	Short: "Compute, pause, and apply monorepo release versions",
	Long: `vplan walks a monorepo's conventional-commit history and
pull-request metadata to compute each project's next version, write its
changelog, and create annotated tags, with a two-phase pause/resume
commit so a release can be inspected before it lands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cliapp.Configure(opts)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: search for versionplan.yml)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "log in JSON format")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(releaseCmd)
}

// ExecuteContext runs the root command with a context for graceful shutdown.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// requireNotPausedE wraps a subcommand's RunE with the startup pause-file
// gate spec.md §4.9/§7 requires of every command but release --resume/--abort.
func requireNotPausedE(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(opts)
		if err != nil {
			return err
		}
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		return fn(cmd, args, a)
	}
}
