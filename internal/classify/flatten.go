package classify

import "github.com/nikbrunner/tidymark/internal/model"

// Flatten returns every bookmark below roots, tagged with scopeID.
// Traversal uses an explicit stack so depth is bounded only by memory.
func Flatten(roots []model.Node, scopeID string) []model.FlatBookmark {
	var out []model.FlatBookmark

	stack := make([]*model.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, &roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.URL != "" {
			out = append(out, model.FlatBookmark{
				ID:            n.ID,
				Title:         n.Title,
				URL:           n.URL,
				ParentID:      n.ParentID,
				OriginScopeID: scopeID,
			})
		}
		// A node with children is walked even if it also carries a URL.
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}

	return out
}

// Scope is one subtree to organize.
type Scope struct {
	ID    string
	Nodes []model.Node
}

// FlattenScopes flattens each scope in order. A bookmark reachable from
// several (nested) scopes is kept once, under the first scope that saw it.
func FlattenScopes(scopes []Scope) []model.FlatBookmark {
	seen := make(map[string]bool)
	var out []model.FlatBookmark
	for _, s := range scopes {
		for _, b := range Flatten(s.Nodes, s.ID) {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}
