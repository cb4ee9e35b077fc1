package cmd

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/picker"
	"github.com/nikbrunner/tidymark/internal/search"
)

var searchOpen bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search bookmarks",
	Long: `Search bookmarks by title and URL. With --open, pick a result and open
it in the default browser.

Examples:
  tidymark search github
  tidymark search --open go docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		results := search.FuzzySearch(store, query)
		out := cmd.OutOrStdout()

		if len(results) == 0 {
			fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
			return nil
		}

		if !searchOpen {
			for _, r := range results {
				fmt.Fprintf(out, "%s  %s\n    %s\n", r.Bookmark.ID, r.Bookmark.Title, r.Bookmark.URL)
			}
			return nil
		}

		var selected *model.Bookmark
		if len(results) == 1 {
			selected = results[0].Bookmark
		} else {
			final, err := tea.NewProgram(picker.New(results, query)).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			selected = final.(picker.Picker).SelectedBookmark()
		}
		if selected == nil {
			return nil
		}

		fmt.Fprintf(out, "Opening: %s\n", selected.Title)
		openURL(selected.URL)
		return nil
	},
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "linux":
		c = exec.Command("xdg-open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if c != nil {
		_ = c.Start()
	}
}

func init() {
	searchCmd.Flags().BoolVar(&searchOpen, "open", false, "pick a result and open it in the browser")
	rootCmd.AddCommand(searchCmd)
}
