package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/tidymark/internal/importer"
	"github.com/nikbrunner/tidymark/internal/model"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	folders, bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("expected 0 folders, got %d", len(folders))
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}

	b := bookmarks[0]
	if b.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", b.URL)
	}
	if b.ParentID != "" {
		t.Errorf("expected top-level bookmark, got parent %q", b.ParentID)
	}
	if !b.CreatedAt.Equal(time.Unix(1234567890, 0)) {
		t.Errorf("expected ADD_DATE to be used, got %v", b.CreatedAt)
	}
	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestParseHTML_NestedFolders(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3>React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com">Google</A>
</DL><p>`

	folders, bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}

	dev, react := folders[0], folders[1]
	if dev.Title != "Development" || dev.ParentID != "" {
		t.Errorf("unexpected first folder: %+v", dev)
	}
	if react.Title != "React" || react.ParentID != dev.ID {
		t.Errorf("expected React inside Development, got %+v", react)
	}

	parents := map[string]string{}
	for _, b := range bookmarks {
		parents[b.Title] = b.ParentID
	}
	want := map[string]string{"React Docs": react.ID, "GitHub": dev.ID, "Google": ""}
	for title, parent := range want {
		if parents[title] != parent {
			t.Errorf("%s: expected parent %q, got %q", title, parent, parents[title])
		}
	}
}

func TestParseHTML_SkipsEmptyHrefAndFallsBackToURL(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="">Nothing</A>
    <DT><A HREF="https://untitled.example"></A>
</DL><p>`

	_, bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}
	if bookmarks[0].Title != "https://untitled.example" {
		t.Errorf("expected URL as title, got %q", bookmarks[0].Title)
	}
}

func TestImport_MergesBelowParent(t *testing.T) {
	store := model.NewStore()
	store.Folders = append(store.Folders, model.Folder{ID: "dev", Title: "Development", ParentID: model.OtherBookmarksID})
	store.Bookmarks = append(store.Bookmarks, model.Bookmark{ID: "gh", Title: "GitHub", URL: "https://github.com", ParentID: "dev"})

	html := `<DL><p>
    <DT><H3>Development</H3>
    <DL><p>
        <DT><A HREF="https://github.com">GitHub again</A>
        <DT><A HREF="https://go.dev">Go</A>
    </DL><p>
    <DT><H3>News</H3>
    <DL><p>
        <DT><A HREF="https://news.ycombinator.com">HN</A>
    </DL><p>
</DL><p>`

	res, err := importer.Import(store, strings.NewReader(html), model.OtherBookmarksID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Added != 2 || res.Skipped != 1 || res.Folders != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	// Go lands in the existing Development folder.
	if got := len(store.GetBookmarksInFolder("dev")); got != 2 {
		t.Errorf("expected 2 bookmarks in Development, got %d", got)
	}
}

func TestImport_UnknownParent(t *testing.T) {
	_, err := importer.Import(model.NewStore(), strings.NewReader("<DL></DL>"), "missing")
	if err == nil {
		t.Fatal("expected error for unknown parent")
	}
}
