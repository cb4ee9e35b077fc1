package search_test

import (
	"testing"

	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/search"
)

func newStore(bookmarks ...model.Bookmark) *model.Store {
	store := model.NewStore()
	store.Bookmarks = append(store.Bookmarks, bookmarks...)
	return store
}

func TestFuzzySearch_EmptyQuery(t *testing.T) {
	store := newStore(model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"})

	if results := search.FuzzySearch(store, ""); len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzySearch_ExactMatch(t *testing.T) {
	store := newStore(
		model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"},
		model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"},
	)

	results := search.FuzzySearch(store, "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.ID != "b1" {
		t.Errorf("expected b1, got %s", results[0].Bookmark.ID)
	}
}

func TestFuzzySearch_MatchesURL(t *testing.T) {
	store := newStore(
		model.Bookmark{ID: "b1", Title: "Router docs", URL: "https://tanstack.com/router"},
		model.Bookmark{ID: "b2", Title: "Recipes", URL: "https://cooking.example"},
	)

	results := search.FuzzySearch(store, "tanstack")

	if len(results) != 1 || results[0].Bookmark.ID != "b1" {
		t.Errorf("expected URL match on b1, got %+v", results)
	}
}

func TestFuzzySearch_NoMatch(t *testing.T) {
	store := newStore(model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"})

	if results := search.FuzzySearch(store, "zzzzz"); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}
