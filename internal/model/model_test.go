package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nikbrunner/tidymark/internal/model"
)

func TestNewStore_SeedsRoots(t *testing.T) {
	store := model.NewStore()

	for _, id := range []string{model.RootID, model.BookmarksBarID, model.OtherBookmarksID, model.MobileBookmarksID} {
		if store.GetFolderByID(id) == nil {
			t.Errorf("expected root folder %s", id)
		}
	}

	// Calling twice must not duplicate
	store.EnsureRoots()
	if len(store.Folders) != 4 {
		t.Errorf("expected 4 folders, got %d", len(store.Folders))
	}
}

func TestStore_GetFoldersInFolder(t *testing.T) {
	store := model.NewStore()
	store.Folders = append(store.Folders,
		model.Folder{ID: "f1", Title: "Development", ParentID: model.BookmarksBarID},
		model.Folder{ID: "f2", Title: "React", ParentID: "f1"},
		model.Folder{ID: "f3", Title: "Node", ParentID: "f1"},
	)

	if got := len(store.GetFoldersInFolder(model.RootID)); got != 3 {
		t.Errorf("expected 3 folders under root, got %d", got)
	}
	if got := len(store.GetFoldersInFolder("f1")); got != 2 {
		t.Errorf("expected 2 folders in f1, got %d", got)
	}
	if got := len(store.GetFoldersInFolder("f2")); got != 0 {
		t.Errorf("expected 0 folders in f2, got %d", got)
	}
}

func TestStore_RemoveSubtree(t *testing.T) {
	store := model.NewStore()
	store.Folders = append(store.Folders,
		model.Folder{ID: "f1", Title: "Dev", ParentID: model.BookmarksBarID},
		model.Folder{ID: "f2", Title: "Go", ParentID: "f1"},
	)
	store.Bookmarks = append(store.Bookmarks,
		model.Bookmark{ID: "b1", Title: "Go Docs", URL: "https://go.dev", ParentID: "f2"},
		model.Bookmark{ID: "b2", Title: "Dev Blog", URL: "https://dev.to", ParentID: "f1"},
		model.Bookmark{ID: "b3", Title: "News", URL: "https://news.ycombinator.com", ParentID: model.BookmarksBarID},
	)

	if !store.RemoveSubtree("f1") {
		t.Fatal("expected f1 to be removed")
	}
	if store.GetFolderByID("f2") != nil {
		t.Error("nested folder should be removed with its parent")
	}
	if len(store.Bookmarks) != 1 || store.Bookmarks[0].ID != "b3" {
		t.Errorf("expected only b3 to survive, got %+v", store.Bookmarks)
	}
	if store.RemoveSubtree("missing") {
		t.Error("expected false for missing id")
	}
	if !store.RemoveSubtree("b3") {
		t.Error("expected bookmark removal to succeed")
	}
}

func TestStore_ImportMerge_SkipsDuplicateURLs(t *testing.T) {
	store := model.NewStore()
	store.Bookmarks = append(store.Bookmarks,
		model.Bookmark{ID: "existing", Title: "Existing", URL: "https://example.com", ParentID: model.BookmarksBarID},
	)

	added, skipped := store.ImportMerge(model.OtherBookmarksID, nil, []model.Bookmark{
		{ID: "new1", Title: "Duplicate", URL: "https://example.com"},
		{ID: "new2", Title: "New Site", URL: "https://newsite.com"},
	})

	if added != 1 || skipped != 1 {
		t.Errorf("expected 1 added / 1 skipped, got %d / %d", added, skipped)
	}
	if b := store.GetBookmarkByID("new2"); b == nil || b.ParentID != model.OtherBookmarksID {
		t.Errorf("expected new2 under other bookmarks, got %+v", b)
	}
}

func TestStore_ImportMerge_ReusesFolderByTitle(t *testing.T) {
	store := model.NewStore()
	store.Folders = append(store.Folders,
		model.Folder{ID: "existing-folder", Title: "Development", ParentID: model.BookmarksBarID},
	)

	store.ImportMerge(model.BookmarksBarID,
		[]model.Folder{{ID: "imported-folder", Title: "Development"}},
		[]model.Bookmark{{ID: "b1", Title: "New", URL: "https://new.com", ParentID: "imported-folder"}},
	)

	if len(store.Folders) != 5 {
		t.Errorf("expected imported folder to be folded into existing one, got %d folders", len(store.Folders))
	}
	if b := store.GetBookmarkByID("b1"); b == nil || b.ParentID != "existing-folder" {
		t.Errorf("bookmark should be remapped to existing-folder, got %+v", b)
	}
}

func TestIsProtectedFolder(t *testing.T) {
	for _, id := range []string{"0", "1", "2", "3"} {
		if !model.IsProtectedFolder(id) {
			t.Errorf("expected %s to be protected", id)
		}
	}
	if model.IsProtectedFolder("42") {
		t.Error("42 should not be protected")
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		setting model.Language
		locale  string
		want    model.Language
	}{
		{model.LanguageZh, "en_US.UTF-8", model.LanguageZh},
		{model.LanguageEn, "zh_CN.UTF-8", model.LanguageEn},
		{model.LanguageAuto, "zh_CN.UTF-8", model.LanguageZh},
		{model.LanguageAuto, "de_DE.UTF-8", model.LanguageEn},
		{"", "", model.LanguageEn},
	}

	for _, tt := range tests {
		if got := model.ResolveLanguage(tt.setting, tt.locale); got != tt.want {
			t.Errorf("ResolveLanguage(%q, %q) = %q, want %q", tt.setting, tt.locale, got, tt.want)
		}
	}

	if model.OtherCategory(model.LanguageEn) != "Others" {
		t.Error("expected English catch-all to be Others")
	}
	if model.OtherCategory(model.LanguageZh) != "其他" {
		t.Error("expected Chinese catch-all to be 其他")
	}
}

func TestPlan_AddAndValidate(t *testing.T) {
	plan := model.NewPlan()
	plan.Add(model.FlatBookmark{ID: "1", URL: "https://github.com"}, "Dev", "")
	plan.Add(model.FlatBookmark{ID: "2", URL: "https://example.com"}, "Others", "")
	plan.Recount("Others")

	if plan.Total != 2 || plan.Classified != 1 {
		t.Errorf("expected total 2 / classified 1, got %d / %d", plan.Total, plan.Classified)
	}
	if err := plan.Validate("Others"); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	// Corrupt the plan: detail disagrees with bucket
	plan.Details[0].Category = "Docs"
	if err := plan.Validate("Others"); err == nil {
		t.Error("expected validation error for mismatched detail")
	}

	plan.Rebuild("Others", "Empty")
	if err := plan.Validate("Others"); err != nil {
		t.Errorf("rebuild should restore invariants: %v", err)
	}
	if plan.Categories["Empty"] == nil || plan.Categories["Empty"].Count != 0 {
		t.Error("expected kept category to survive as empty bucket")
	}
	if plan.Categories["Dev"] != nil {
		t.Error("expected Dev bucket to disappear after rebuild")
	}
}

func TestPlan_JSONFieldNames(t *testing.T) {
	plan := model.NewPlan()
	plan.Add(model.FlatBookmark{ID: "1", Title: "Go", URL: "https://go.dev"}, "Dev", "f1")

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	out := string(data)
	for _, key := range []string{`"total"`, `"classified"`, `"categories"`, `"details"`, `"scopeFolderId"`} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %s in %s", key, out)
		}
	}
	if strings.Contains(out, `"moved"`) {
		t.Error("moved should be omitted before execution")
	}
}
