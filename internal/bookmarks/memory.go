package bookmarks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/search"
)

// MemoryTree implements Tree on top of a model.Store. All operations are
// serialized; the caller persists the store when it is done.
type MemoryTree struct {
	mu    sync.Mutex
	store *model.Store
}

// NewMemoryTree wraps store. Missing root folders are added.
func NewMemoryTree(store *model.Store) *MemoryTree {
	if store == nil {
		store = model.NewStore()
	}
	store.EnsureRoots()
	return &MemoryTree{store: store}
}

// Store returns the underlying store.
func (t *MemoryTree) Store() *model.Store {
	return t.store
}

func (t *MemoryTree) GetTree(ctx context.Context) ([]model.Node, error) {
	return t.GetSubTree(ctx, model.RootID)
}

func (t *MemoryTree) GetSubTree(ctx context.Context, id string) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if b := t.store.GetBookmarkByID(id); b != nil {
		return []model.Node{bookmarkNode(*b)}, nil
	}
	if t.store.GetFolderByID(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return []model.Node{t.index().build(id)}, nil
}

func (t *MemoryTree) Search(ctx context.Context, query string) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	results := search.FuzzySearch(t.store, query)
	nodes := make([]model.Node, 0, len(results))
	for _, r := range results {
		nodes = append(nodes, bookmarkNode(*r.Bookmark))
	}
	return nodes, nil
}

func (t *MemoryTree) Create(ctx context.Context, params CreateParams) (model.Node, error) {
	if err := ctx.Err(); err != nil {
		return model.Node{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store.GetFolderByID(params.ParentID) == nil {
		return model.Node{}, fmt.Errorf("%w: %s", ErrInvalidParent, params.ParentID)
	}

	if params.URL == "" {
		f := model.NewFolder(model.NewFolderParams{Title: params.Title, ParentID: params.ParentID})
		t.store.Folders = append(t.store.Folders, f)
		return folderNode(f), nil
	}

	b := model.NewBookmark(model.NewBookmarkParams{Title: params.Title, URL: params.URL, ParentID: params.ParentID})
	t.store.Bookmarks = append(t.store.Bookmarks, b)
	return bookmarkNode(b), nil
}

func (t *MemoryTree) Move(ctx context.Context, id, parentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store.GetFolderByID(parentID) == nil {
		return fmt.Errorf("%w: %s", ErrInvalidParent, parentID)
	}

	if b := t.store.GetBookmarkByID(id); b != nil {
		b.ParentID = parentID
		return nil
	}

	f := t.store.GetFolderByID(id)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if model.IsProtectedFolder(id) {
		return fmt.Errorf("%w: %s", ErrProtected, id)
	}
	// Refuse to move a folder below itself.
	for cur := parentID; cur != ""; {
		if cur == id {
			return fmt.Errorf("%w: %s is inside %s", ErrInvalidParent, parentID, id)
		}
		p := t.store.GetFolderByID(cur)
		if p == nil {
			break
		}
		cur = p.ParentID
	}
	f.ParentID = parentID
	return nil
}

func (t *MemoryTree) GetChildren(ctx context.Context, id string) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store.GetFolderByID(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var children []model.Node
	for _, f := range t.store.GetFoldersInFolder(id) {
		children = append(children, folderNode(f))
	}
	for _, b := range t.store.GetBookmarksInFolder(id) {
		children = append(children, bookmarkNode(b))
	}
	return children, nil
}

func (t *MemoryTree) RemoveTree(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if model.IsProtectedFolder(id) {
		return fmt.Errorf("%w: %s", ErrProtected, id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.store.RemoveSubtree(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// childIndex groups folders and bookmarks by parent for node building.
type childIndex struct {
	byID      map[string]model.Folder
	folders   map[string][]model.Folder
	bookmarks map[string][]model.Bookmark
}

func (t *MemoryTree) index() *childIndex {
	idx := &childIndex{
		folders:   make(map[string][]model.Folder),
		bookmarks: make(map[string][]model.Bookmark),
		byID:      make(map[string]model.Folder, len(t.store.Folders)),
	}
	for _, f := range t.store.Folders {
		idx.byID[f.ID] = f
		if f.ID == model.RootID {
			continue
		}
		idx.folders[f.ParentID] = append(idx.folders[f.ParentID], f)
	}
	for _, b := range t.store.Bookmarks {
		idx.bookmarks[b.ParentID] = append(idx.bookmarks[b.ParentID], b)
	}
	return idx
}

func (idx *childIndex) build(id string) model.Node {
	node := folderNode(idx.byID[id])
	for _, child := range idx.folders[id] {
		node.Children = append(node.Children, idx.build(child.ID))
	}
	for _, b := range idx.bookmarks[id] {
		node.Children = append(node.Children, bookmarkNode(b))
	}
	return node
}

func folderNode(f model.Folder) model.Node {
	return model.Node{
		ID:        f.ID,
		Title:     f.Title,
		ParentID:  f.ParentID,
		DateAdded: millis(f.CreatedAt),
	}
}

func bookmarkNode(b model.Bookmark) model.Node {
	return model.Node{
		ID:        b.ID,
		Title:     b.Title,
		URL:       b.URL,
		ParentID:  b.ParentID,
		DateAdded: millis(b.CreatedAt),
	}
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
