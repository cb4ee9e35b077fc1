package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API",
	Long: `Serve preview and apply over HTTP for the browser extension.

Endpoints:
  GET  /health
  GET  /api/tree
  GET  /api/search?q=
  POST /api/preview/rules   {"scopeIds": [...]}
  POST /api/preview/refine  <plan>
  POST /api/preview/infer   {"scopeIds": [...]}
  POST /api/apply           <plan>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = settings.ServerAddr
		}

		srv := server.New(server.Params{
			Service:  service,
			Tree:     tree,
			Settings: settings,
			Persist:  save,
			Logger:   logger,
		})
		cmd.Printf("Listening on http://%s\n", addr)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default serverAddr from config)")
	rootCmd.AddCommand(serveCmd)
}
