package model

import "time"

// Well-known folder ids. They mirror the fixed roots of a browser bookmark
// tree and are never deleted by the organizer.
const (
	RootID            = "0"
	BookmarksBarID    = "1"
	OtherBookmarksID  = "2"
	MobileBookmarksID = "3"
)

// DefaultOrganizeRootID is where category folders are created when a plan
// carries no scope.
const DefaultOrganizeRootID = BookmarksBarID

// IsProtectedFolder reports whether id is one of the fixed root folders.
func IsProtectedFolder(id string) bool {
	switch id {
	case RootID, BookmarksBarID, OtherBookmarksID, MobileBookmarksID:
		return true
	}
	return false
}

// Folder represents a container for bookmarks and other folders.
type Folder struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ParentID  string    `json:"parentId"` // empty only for the root
	CreatedAt time.Time `json:"createdAt"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Title    string
	ParentID string
}

// NewFolder creates a Folder with generated UUID.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:        GenerateUUID(),
		Title:     params.Title,
		ParentID:  params.ParentID,
		CreatedAt: time.Now(),
	}
}

// rootFolders returns the fixed roots every store starts with.
func rootFolders() []Folder {
	return []Folder{
		{ID: RootID, Title: ""},
		{ID: BookmarksBarID, Title: "Bookmarks bar", ParentID: RootID},
		{ID: OtherBookmarksID, Title: "Other bookmarks", ParentID: RootID},
		{ID: MobileBookmarksID, Title: "Mobile bookmarks", ParentID: RootID},
	}
}
