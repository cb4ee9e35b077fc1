package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/importer"
	"github.com/nikbrunner/tidymark/internal/model"
)

var importParent string

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import bookmarks from a browser HTML export",
	Long: `Import a Netscape bookmark file, as exported by every major browser.

Bookmarks whose URL is already stored are skipped, and folders are merged
into same-named folders at the same level. Importing into the root folder
(--parent 0) maps a browser's bookmarks bar onto the stored one.

Examples:
  tidymark import bookmarks.html
  tidymark import chrome.html --parent 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer file.Close()

		res, err := importer.Import(store, file, importParent)
		if err != nil {
			return err
		}
		if err := save(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks, %d folders", res.Added, res.Folders)
		if res.Skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d duplicates skipped)", res.Skipped)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importParent, "parent", model.OtherBookmarksID, "folder id to import into")
	rootCmd.AddCommand(importCmd)
}
