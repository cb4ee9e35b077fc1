package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var previewFlags struct {
	scopes []string
	ai     bool
	json   bool
	out    string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Classify bookmarks by rules and show the plan",
	Long: `Classify bookmarks with the keyword rules and show the resulting plan.
Nothing is moved.

With --ai the plan is refined by the configured AI provider. If AI is
disabled or every request fails, the rule plan is shown unchanged.

Examples:
  tidymark preview
  tidymark preview --scope 1 --ai
  tidymark preview --json -o plan.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		plan, err := service.PreviewByRules(ctx, settings, previewFlags.scopes)
		if err != nil {
			return err
		}
		logger.Debug("rule preview", zap.String("scopes", joinScopes(previewFlags.scopes)), zap.Int("total", plan.Total))

		if previewFlags.ai {
			plan, err = service.RefinePlanWithAI(ctx, settings, plan)
			if err != nil {
				return fmt.Errorf("refine plan: %w", err)
			}
		}

		if previewFlags.json || previewFlags.out != "" {
			return writePlan(plan, previewFlags.out)
		}
		printSummary(cmd.OutOrStdout(), plan, settings.Other())
		return nil
	},
}

func init() {
	previewCmd.Flags().StringSliceVarP(&previewFlags.scopes, "scope", "s", nil, "folder id to organize (repeatable, default whole tree)")
	previewCmd.Flags().BoolVar(&previewFlags.ai, "ai", false, "refine the rule plan with the AI provider")
	previewCmd.Flags().BoolVar(&previewFlags.json, "json", false, "print the plan as JSON")
	previewCmd.Flags().StringVarP(&previewFlags.out, "output", "o", "", "write the plan JSON to a file")
	rootCmd.AddCommand(previewCmd)
}
