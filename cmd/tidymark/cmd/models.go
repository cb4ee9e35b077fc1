package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/ai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models of the configured AI provider",
	Long: `List the models the configured provider offers. Only Ollama supports
listing; other providers report their configured model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ai.NewClient(settings, ai.WithLogger(logger))
		if err != nil {
			return err
		}

		models, err := client.ListModels(cmd.Context())
		var cfgErr *ai.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.Provider(), client.Model())
			return nil
		}
		if err != nil {
			return err
		}
		for _, m := range models {
			marker := "  "
			if m == client.Model() {
				marker = "* "
			}
			fmt.Fprintln(cmd.OutOrStdout(), marker+m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
