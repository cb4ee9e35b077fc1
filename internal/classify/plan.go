package classify

import "github.com/nikbrunner/tidymark/internal/model"

type planOptions struct {
	categories []string
	scopes     []string
}

// PlanOption configures BuildPlan.
type PlanOption func(*planOptions)

// WithCategories creates buckets up front so they appear even when empty.
func WithCategories(names ...string) PlanOption {
	return func(o *planOptions) {
		o.categories = append(o.categories, names...)
	}
}

// WithScopes records the scope folder ids in the plan metadata.
func WithScopes(ids ...string) PlanOption {
	return func(o *planOptions) {
		o.scopes = append(o.scopes, ids...)
	}
}

// BuildPlan classifies each bookmark that has a URL and assembles the plan.
// It is the single plan constructor for rule, refined and inferred previews.
func BuildPlan(flat []model.FlatBookmark, classifyFn func(model.FlatBookmark) string, other string, opts ...PlanOption) *model.Plan {
	var o planOptions
	for _, opt := range opts {
		opt(&o)
	}

	plan := model.NewPlan()
	for _, name := range o.categories {
		plan.EnsureCategory(name)
	}
	if len(o.scopes) > 0 {
		plan.Meta = &model.PlanMeta{ScopeFolderIDs: o.scopes}
	}

	for _, b := range flat {
		if b.URL == "" {
			continue
		}
		plan.Add(b, classifyFn(b), b.OriginScopeID)
	}
	plan.Recount(other)

	return plan
}
