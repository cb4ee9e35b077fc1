package cmd

import (
	"github.com/spf13/cobra"
)

var inferFlags struct {
	scopes []string
	json   bool
	out    string
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Let the AI provider invent categories and show the plan",
	Long: `Send bookmark titles and URLs to the configured AI provider and let it
propose its own categories. Nothing is moved.

Unlike preview --ai, this fails when AI is disabled or produces nothing.

Examples:
  tidymark infer --scope 2
  tidymark infer -o plan.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := service.PreviewByAIInference(cmd.Context(), settings, inferFlags.scopes)
		if err != nil {
			return err
		}
		if inferFlags.json || inferFlags.out != "" {
			return writePlan(plan, inferFlags.out)
		}
		printSummary(cmd.OutOrStdout(), plan, settings.Other())
		return nil
	},
}

func init() {
	inferCmd.Flags().StringSliceVarP(&inferFlags.scopes, "scope", "s", nil, "folder id to organize (repeatable, default whole tree)")
	inferCmd.Flags().BoolVar(&inferFlags.json, "json", false, "print the plan as JSON")
	inferCmd.Flags().StringVarP(&inferFlags.out, "output", "o", "", "write the plan JSON to a file")
	rootCmd.AddCommand(inferCmd)
}
