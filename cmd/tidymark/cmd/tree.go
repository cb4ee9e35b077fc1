package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/tidymark/internal/model"
)

var treeLinks bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the folder tree with ids",
	Long: `Print the folder structure with folder ids, to pick --scope values.
With --links bookmarks are listed too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roots, err := tree.GetTree(cmd.Context())
		if err != nil {
			return err
		}
		printNodes(cmd.OutOrStdout(), roots, 0)
		return nil
	},
}

func printNodes(w io.Writer, nodes []model.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if !n.IsFolder() {
			if treeLinks {
				fmt.Fprintf(w, "%s- %s %s\n", indent, n.Title, countStyle.Render(n.URL))
			}
			continue
		}
		title := n.Title
		if n.ID == model.RootID {
			title = "(root)"
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, headingStyle.Render(title), countStyle.Render("["+n.ID+"]"))
		printNodes(w, n.Children, depth+1)
	}
}

func init() {
	treeCmd.Flags().BoolVarP(&treeLinks, "links", "l", false, "list bookmarks as well")
	rootCmd.AddCommand(treeCmd)
}
