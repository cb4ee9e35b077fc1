package bookmarks

import (
	"context"
	"errors"

	"github.com/nikbrunner/tidymark/internal/model"
)

var (
	// ErrNotFound is returned when a node id does not exist (anymore).
	ErrNotFound = errors.New("bookmark node not found")
	// ErrInvalidParent is returned when a create or move targets a missing
	// folder, a bookmark, or a node's own subtree.
	ErrInvalidParent = errors.New("invalid parent folder")
	// ErrProtected is returned when removing one of the fixed root folders.
	ErrProtected = errors.New("folder is protected")
)

// CreateParams describes a node to create. An empty URL creates a folder.
type CreateParams struct {
	Title    string
	URL      string
	ParentID string
}

// Tree is the bookmark store the organizer works against.
type Tree interface {
	GetTree(ctx context.Context) ([]model.Node, error)
	GetSubTree(ctx context.Context, id string) ([]model.Node, error)
	Search(ctx context.Context, query string) ([]model.Node, error)
	Create(ctx context.Context, params CreateParams) (model.Node, error)
	Move(ctx context.Context, id, parentID string) error
	GetChildren(ctx context.Context, id string) ([]model.Node, error)
	RemoveTree(ctx context.Context, id string) error
}
