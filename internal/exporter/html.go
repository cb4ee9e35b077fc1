package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/tidymark/internal/model"
)

// DefaultExportPath returns ~/Downloads/tidymark-export-YYYY-MM-DD.html.
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("tidymark-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the store as Netscape bookmark HTML. The fixed roots
// become top-level folders, the bookmarks bar flagged the way browsers
// expect.
func ExportHTML(store *model.Store) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, store, model.RootID, 1)

	b.WriteString("</DL><p>\n")
	return b.String()
}

func writeItems(b *strings.Builder, store *model.Store, parentID string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range store.GetFoldersInFolder(parentID) {
		attrs := ""
		if !folder.CreatedAt.IsZero() {
			attrs = fmt.Sprintf(" ADD_DATE=\"%d\"", folder.CreatedAt.Unix())
		}
		if folder.ID == model.BookmarksBarID {
			attrs += " PERSONAL_TOOLBAR_FOLDER=\"true\""
		}
		fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, attrs, html.EscapeString(folder.Title))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeItems(b, store, folder.ID, indent+1)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, bookmark := range store.GetBookmarksInFolder(parentID) {
		var added int64
		if !bookmark.CreatedAt.IsZero() {
			added = bookmark.CreatedAt.Unix()
		}
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			prefix,
			html.EscapeString(bookmark.URL),
			added,
			html.EscapeString(bookmark.Title),
		)
	}
}
