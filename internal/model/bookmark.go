package model

import "time"

// Bookmark represents a saved URL inside a folder.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	ParentID  string    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	ParentID string
}

// NewBookmark creates a Bookmark with generated UUID and timestamp.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		ParentID:  params.ParentID,
		CreatedAt: time.Now(),
	}
}
