package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template TEMPLATE",
	Short: "Render the computed plan through the given text/template string",
	Args:  cobra.ExactArgs(1),
	RunE: requireNotPausedE(func(cmd *cobra.Command, args []string, a *app) error {
		const op = "template"
		ctx := cmd.Context()

		p, err := a.buildPlan(ctx)
		if err != nil {
			return err
		}
		views := buildPlanViews(a.cfg, p)
		out, err := renderTemplate(op, args[0], views)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}),
}
