package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/model"
)

var organizeFlags struct {
	scopes []string
	ai     bool
	infer  bool
	yes    bool
}

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Preview, review and apply in one go",
	Long: `Build a plan (rules, rules refined by AI, or AI inference), review it
interactively and apply it when accepted.

Examples:
  tidymark organize --scope 1
  tidymark organize --ai
  tidymark organize --infer --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if organizeFlags.ai && organizeFlags.infer {
			return fmt.Errorf("--ai and --infer are mutually exclusive")
		}
		ctx := cmd.Context()

		var (
			plan *model.Plan
			err  error
		)
		if organizeFlags.infer {
			plan, err = service.PreviewByAIInference(ctx, settings, organizeFlags.scopes)
		} else {
			plan, err = service.PreviewByRules(ctx, settings, organizeFlags.scopes)
			if err == nil && organizeFlags.ai {
				plan, err = service.RefinePlanWithAI(ctx, settings, plan)
			}
		}
		if err != nil {
			return err
		}

		if len(plan.Details) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to organize.")
			return nil
		}

		if !organizeFlags.yes {
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

func init() {
	organizeCmd.Flags().StringSliceVarP(&organizeFlags.scopes, "scope", "s", nil, "folder id to organize (repeatable, default whole tree)")
	organizeCmd.Flags().BoolVar(&organizeFlags.ai, "ai", false, "refine the rule plan with the AI provider")
	organizeCmd.Flags().BoolVar(&organizeFlags.infer, "infer", false, "let the AI provider invent categories")
	organizeCmd.Flags().BoolVarP(&organizeFlags.yes, "yes", "y", false, "apply without review")
	rootCmd.AddCommand(organizeCmd)
}
