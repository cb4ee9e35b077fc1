package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/exporter"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export bookmarks as browser HTML",
	Long: `Write all bookmarks as a Netscape bookmark file that browsers can import.
Defaults to ~/Downloads/tidymark-export-YYYY-MM-DD.html.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var outputPath string
		if len(args) == 1 {
			outputPath = args[0]
		} else {
			p, err := exporter.DefaultExportPath()
			if err != nil {
				return fmt.Errorf("default export path: %w", err)
			}
			outputPath = p
		}

		if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(store)), 0644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n",
			len(store.Bookmarks), len(store.Folders), outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
