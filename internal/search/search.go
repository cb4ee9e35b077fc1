package search

import (
	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents a fuzzy search match.
type Result struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkSource implements fuzzy.Source over title and URL.
type bookmarkSource []*model.Bookmark

func (bs bookmarkSource) String(i int) string {
	return bs[i].Title + " " + bs[i].URL
}

func (bs bookmarkSource) Len() int {
	return len(bs)
}

// FuzzySearch searches all bookmarks by title and URL using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearch(store *model.Store, query string) []Result {
	if query == "" {
		return nil
	}

	bookmarks := make(bookmarkSource, len(store.Bookmarks))
	for i := range store.Bookmarks {
		bookmarks[i] = &store.Bookmarks[i]
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
