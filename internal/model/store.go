package model

// Store holds all bookmarks and folders.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates a Store containing only the fixed root folders.
func NewStore() *Store {
	s := &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
	s.EnsureRoots()
	return s
}

// EnsureRoots adds any missing fixed root folder. Stores loaded from older
// files or foreign exports may lack some of them.
func (s *Store) EnsureRoots() {
	for _, root := range rootFolders() {
		if s.GetFolderByID(root.ID) == nil {
			s.Folders = append(s.Folders, root)
		}
	}
}

// GetFoldersInFolder returns folders with the given parent ID.
func (s *Store) GetFoldersInFolder(parentID string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if f.ParentID == parentID && f.ID != RootID {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder.
func (s *Store) GetBookmarksInFolder(parentID string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.ParentID == parentID {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether any bookmark already points at url.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// RemoveSubtree deletes the folder or bookmark with the given id together
// with everything below it. Returns false if id does not exist.
func (s *Store) RemoveSubtree(id string) bool {
	if s.GetBookmarkByID(id) != nil {
		s.Bookmarks = filterBookmarks(s.Bookmarks, func(b Bookmark) bool { return b.ID != id })
		return true
	}
	if s.GetFolderByID(id) == nil {
		return false
	}

	doomed := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, f := range s.Folders {
			if f.ParentID == current && !doomed[f.ID] {
				doomed[f.ID] = true
				queue = append(queue, f.ID)
			}
		}
	}

	s.Bookmarks = filterBookmarks(s.Bookmarks, func(b Bookmark) bool { return !doomed[b.ParentID] })
	folders := s.Folders[:0]
	for _, f := range s.Folders {
		if !doomed[f.ID] {
			folders = append(folders, f)
		}
	}
	s.Folders = folders
	return true
}

// ImportMerge merges imported folders and bookmarks below parentID.
// Imported top-level items (empty ParentID) are attached to parentID.
// Bookmarks whose URL already exists are skipped, and an imported folder is
// folded into an existing folder with the same title at the same level.
func (s *Store) ImportMerge(parentID string, folders []Folder, bookmarks []Bookmark) (added, skipped int) {
	idMap := make(map[string]string, len(folders))

	resolve := func(importedParent string) string {
		if importedParent == "" {
			return parentID
		}
		if mapped, ok := idMap[importedParent]; ok {
			return mapped
		}
		return parentID
	}

	for _, f := range folders {
		target := resolve(f.ParentID)
		if existing := s.findFolderByTitle(target, f.Title); existing != nil {
			idMap[f.ID] = existing.ID
			continue
		}
		f.ParentID = target
		s.Folders = append(s.Folders, f)
		idMap[f.ID] = f.ID
	}

	for _, b := range bookmarks {
		if s.HasBookmarkURL(b.URL) {
			skipped++
			continue
		}
		b.ParentID = resolve(b.ParentID)
		s.Bookmarks = append(s.Bookmarks, b)
		added++
	}

	return added, skipped
}

func (s *Store) findFolderByTitle(parentID, title string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ParentID == parentID && s.Folders[i].Title == title {
			return &s.Folders[i]
		}
	}
	return nil
}

func filterBookmarks(in []Bookmark, keep func(Bookmark) bool) []Bookmark {
	out := in[:0]
	for _, b := range in {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
