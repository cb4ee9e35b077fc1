package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/tidymark/internal/model"
)

// Result summarizes an import.
type Result struct {
	Folders int
	Added   int
	Skipped int
}

// ParseHTMLBookmarks parses Netscape bookmark HTML. Top-level items have an
// empty ParentID; folders are returned parents first.
func ParseHTMLBookmarks(r io.Reader) ([]model.Folder, []model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse bookmark html: %w", err)
	}

	var folders []model.Folder
	var bookmarks []model.Bookmark

	// Folder ids from the outermost DL inwards.
	var folderStack []string
	// An H3 only becomes the current folder once its DL opens.
	var pending string

	current := func() string {
		if len(folderStack) == 0 {
			return ""
		}
		return folderStack[len(folderStack)-1]
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					return
				}
				folder := model.NewFolder(model.NewFolderParams{Title: name, ParentID: current()})
				folder.CreatedAt = addDate(n, folder.CreatedAt)
				folders = append(folders, folder)
				pending = folder.ID
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				b := model.NewBookmark(model.NewBookmarkParams{Title: title, URL: href, ParentID: current()})
				b.CreatedAt = addDate(n, b.CreatedAt)
				bookmarks = append(bookmarks, b)
				return

			case "dl":
				pushed := false
				if pending != "" {
					folderStack = append(folderStack, pending)
					pending = ""
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return folders, bookmarks, nil
}

// Import parses r and merges the result into store below parentID.
// Bookmarks whose URL is already present are skipped.
func Import(store *model.Store, r io.Reader, parentID string) (Result, error) {
	if store.GetFolderByID(parentID) == nil {
		return Result{}, fmt.Errorf("import target folder %q not found", parentID)
	}
	folders, bookmarks, err := ParseHTMLBookmarks(r)
	if err != nil {
		return Result{}, err
	}

	before := len(store.Folders)
	added, skipped := store.ImportMerge(parentID, folders, bookmarks)
	return Result{Folders: len(store.Folders) - before, Added: added, Skipped: skipped}, nil
}

func addDate(n *html.Node, fallback time.Time) time.Time {
	if v := getAttr(n, "add_date"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(ts, 0)
		}
	}
	return fallback
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
