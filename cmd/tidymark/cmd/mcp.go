package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server on stdio",
	Long: `Expose tree, search, preview_rules, refine_plan, preview_infer and
apply_plan as MCP tools over stdin/stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mcp.NewServer("tidymark", version, mcp.Deps{
			Service:  service,
			Tree:     tree,
			Settings: settings,
			Persist:  save,
		})
		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
