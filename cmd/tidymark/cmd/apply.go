package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/model"
)

var applyFlags struct {
	plan   string
	review bool
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a saved plan",
	Long: `Move bookmarks into the folders named by a plan written by preview or
infer. Applying the same plan twice moves nothing the second time.

Examples:
  tidymark apply --plan plan.json
  tidymark infer --json | tidymark apply --plan -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := readPlan(applyFlags.plan)
		if err != nil {
			return err
		}
		if applyFlags.review {
			plan, err = reviewPlan(plan, settings.Other())
			if err != nil {
				return err
			}
			if plan == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled, nothing moved.")
				return nil
			}
		}
		return applyAndSave(cmd, plan)
	},
}

func applyAndSave(cmd *cobra.Command, plan *model.Plan) error {
	result, err := service.ApplyPlan(cmd.Context(), settings, plan)
	if err != nil {
		return err
	}
	if err := save(cmd.Context()); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result, settings.Other())
	return nil
}

func init() {
	applyCmd.Flags().StringVarP(&applyFlags.plan, "plan", "p", "", "plan JSON file, - for stdin")
	applyCmd.Flags().BoolVar(&applyFlags.review, "review", false, "review the plan before applying")
	_ = applyCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(applyCmd)
}
