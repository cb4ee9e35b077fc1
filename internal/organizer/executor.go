package organizer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/nikbrunner/tidymark/internal/bookmarks"
	"github.com/nikbrunner/tidymark/internal/classify"
	"github.com/nikbrunner/tidymark/internal/model"
)

// Executor moves bookmarks into the folders a plan asks for.
type Executor struct {
	tree   bookmarks.Tree
	other  string
	logger *zap.Logger
}

// folderCache maps scope id -> folder title -> folder id for one run.
type folderCache map[string]map[string]string

// NewExecutor returns an executor that files other-category bookmarks into
// a folder named other.
func NewExecutor(tree bookmarks.Tree, other string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{tree: tree, other: other, logger: logger}
}

// Execute applies plan and returns a copy carrying Moved and Skipped.
// Bookmarks already in their target folder are left alone, so running the
// same plan again moves nothing. A bookmark that no longer exists is
// skipped; any other move error aborts. Source folders emptied by the run
// are removed, except fixed roots and scope roots; removal failures are
// only logged.
func (e *Executor) Execute(ctx context.Context, plan *model.Plan) (*model.Plan, error) {
	if plan == nil {
		return nil, errors.New("nil plan")
	}
	cache := make(folderCache)

	scopes := make(map[string]bool)
	for _, d := range plan.Details {
		scopes[scopeOf(d)] = true
	}

	// Category folders first, in plan order. Other is created lazily below.
	for _, d := range plan.Details {
		if d.Category == e.other {
			continue
		}
		if _, err := e.folderFor(ctx, cache, scopeOf(d), d.Category); err != nil {
			return nil, err
		}
	}

	parents, err := e.currentParents(ctx, plan)
	if err != nil {
		return nil, err
	}

	var moved, skipped int
	emptied := make(map[string]bool)

	for _, d := range plan.Details {
		from, ok := parents[d.Bookmark.ID]
		if !ok {
			// Not below any scope we read; look it up on its own.
			current, err := e.tree.GetSubTree(ctx, d.Bookmark.ID)
			if errors.Is(err, bookmarks.ErrNotFound) || (err == nil && len(current) == 0) {
				e.logger.Info("bookmark vanished before move", zap.String("id", d.Bookmark.ID))
				skipped++
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("look up bookmark %s: %w", d.Bookmark.ID, err)
			}
			from = current[0].ParentID
		}

		target, err := e.folderFor(ctx, cache, scopeOf(d), d.Category)
		if err != nil {
			return nil, err
		}

		if from == target {
			continue
		}

		if err := e.tree.Move(ctx, d.Bookmark.ID, target); err != nil {
			if errors.Is(err, bookmarks.ErrNotFound) {
				e.logger.Info("bookmark vanished during move", zap.String("id", d.Bookmark.ID))
				skipped++
				continue
			}
			return nil, fmt.Errorf("move bookmark %s: %w", d.Bookmark.ID, err)
		}
		moved++
		emptied[from] = true
		parents[d.Bookmark.ID] = target
	}

	e.cleanup(ctx, emptied, scopes)

	out := clonePlan(plan)
	out.Moved = moved
	out.Skipped = skipped
	return out, nil
}

// currentParents reads the live parent of every bookmark below the plan's
// scopes, one subtree read per scope. Details without a scope make it read
// the whole tree instead.
func (e *Executor) currentParents(ctx context.Context, plan *model.Plan) (map[string]string, error) {
	roots := make(map[string]bool)
	whole := false
	for _, d := range plan.Details {
		id := d.ScopeFolderID
		if id == "" {
			id = d.Bookmark.OriginScopeID
		}
		if id == "" {
			whole = true
			break
		}
		roots[id] = true
	}

	parents := make(map[string]string)
	add := func(nodes []model.Node) {
		for _, b := range classify.Flatten(nodes, "") {
			parents[b.ID] = b.ParentID
		}
	}

	if whole {
		nodes, err := e.tree.GetTree(ctx)
		if err != nil {
			return nil, fmt.Errorf("read tree: %w", err)
		}
		add(nodes)
		return parents, nil
	}

	ids := make([]string, 0, len(roots))
	for id := range roots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		nodes, err := e.tree.GetSubTree(ctx, id)
		if errors.Is(err, bookmarks.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read scope %s: %w", id, err)
		}
		add(nodes)
	}
	return parents, nil
}

// folderFor finds or creates the folder named title directly below scope.
// Same-named folders elsewhere in the tree are never reused.
func (e *Executor) folderFor(ctx context.Context, cache folderCache, scope, title string) (string, error) {
	byTitle, ok := cache[scope]
	if !ok {
		children, err := e.tree.GetChildren(ctx, scope)
		if err != nil {
			return "", fmt.Errorf("list scope %s: %w", scope, err)
		}
		byTitle = make(map[string]string)
		for _, c := range children {
			if c.IsFolder() {
				if _, dup := byTitle[c.Title]; !dup {
					byTitle[c.Title] = c.ID
				}
			}
		}
		cache[scope] = byTitle
	}

	if id, ok := byTitle[title]; ok {
		return id, nil
	}

	node, err := e.tree.Create(ctx, bookmarks.CreateParams{Title: title, ParentID: scope})
	if err != nil {
		return "", fmt.Errorf("create folder %q in %s: %w", title, scope, err)
	}
	e.logger.Debug("created folder", zap.String("title", title), zap.String("parent", scope), zap.String("id", node.ID))
	byTitle[title] = node.ID
	return node.ID, nil
}

func (e *Executor) cleanup(ctx context.Context, candidates, scopes map[string]bool) {
	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if id == "" || model.IsProtectedFolder(id) || scopes[id] {
			continue
		}
		children, err := e.tree.GetChildren(ctx, id)
		if err != nil {
			e.logger.Warn("cleanup: list folder failed", zap.String("id", id), zap.Error(err))
			continue
		}
		if len(children) > 0 {
			continue
		}
		if err := e.tree.RemoveTree(ctx, id); err != nil {
			e.logger.Warn("cleanup: remove folder failed", zap.String("id", id), zap.Error(err))
			continue
		}
		e.logger.Debug("removed empty folder", zap.String("id", id))
	}
}

func scopeOf(d model.Detail) string {
	if d.ScopeFolderID != "" {
		return d.ScopeFolderID
	}
	if d.Bookmark.OriginScopeID != "" {
		return d.Bookmark.OriginScopeID
	}
	return model.DefaultOrganizeRootID
}
