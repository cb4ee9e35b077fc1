package organizer

import (
	"errors"

	"github.com/nikbrunner/tidymark/internal/ai"
	"github.com/nikbrunner/tidymark/internal/classify"
	"github.com/nikbrunner/tidymark/internal/model"
)

// MinConfidence is the lowest confidence at which a refine suggestion is applied.
const MinConfidence = 0.5

// ErrNoAssignments means inference produced nothing to build a plan from.
var ErrNoAssignments = errors.New("AI produced no category assignments")

// MergeRefine applies AI reassignments to a copy of base. A suggestion is
// ignored when its id is flagged low-confidence, its confidence is below
// MinConfidence, its target is not already a category of base, or its id
// is not part of base. Nil results (failed batches) are skipped.
func MergeRefine(base *model.Plan, results []*ai.RefineResult, other string) *model.Plan {
	allowed := make(map[string]bool, len(base.Categories))
	for name := range base.Categories {
		allowed[name] = true
	}

	low := make(map[string]bool)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, id := range r.LowConfidence {
			low[id] = true
		}
	}

	out := clonePlan(base)
	index := make(map[string]int, len(out.Details))
	for i, d := range out.Details {
		index[d.Bookmark.ID] = i
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		for _, item := range r.Items {
			if low[item.ID] {
				continue
			}
			if item.Confidence != nil && *item.Confidence < MinConfidence {
				continue
			}
			if !allowed[item.ToKey] {
				continue
			}
			i, ok := index[item.ID]
			if !ok {
				continue
			}
			out.Details[i].Category = item.ToKey
		}
	}

	out.Rebuild(other)
	return out
}

// MergeInfer builds a plan from open-taxonomy assignments. Low-confidence and
// unassigned bookmarks go to other. Every category any batch mentioned gets
// a bucket, even if it stays empty.
func MergeInfer(flat []model.FlatBookmark, results []*ai.InferResult, other string, scopes []string) (*model.Plan, error) {
	var categories []string
	seenCategory := make(map[string]bool)
	addCategory := func(name string) {
		if name == "" || seenCategory[name] {
			return
		}
		seenCategory[name] = true
		categories = append(categories, name)
	}

	low := make(map[string]bool)
	assigned := make(map[string]string)

	for _, r := range results {
		if r == nil {
			continue
		}
		for _, name := range r.Categories {
			addCategory(name)
		}
		for _, id := range r.LowConfidence {
			low[id] = true
		}
		for _, a := range r.Assignments {
			addCategory(a.ToKey)
			if _, dup := assigned[a.ID]; !dup {
				assigned[a.ID] = a.ToKey
			}
		}
	}

	if len(assigned) == 0 || len(categories) == 0 {
		return nil, ErrNoAssignments
	}

	classifyFn := func(b model.FlatBookmark) string {
		if low[b.ID] {
			return other
		}
		if to, ok := assigned[b.ID]; ok {
			return to
		}
		return other
	}

	return classify.BuildPlan(flat, classifyFn, other,
		classify.WithCategories(categories...),
		classify.WithScopes(scopes...),
	), nil
}

func clonePlan(p *model.Plan) *model.Plan {
	out := &model.Plan{
		Total:      p.Total,
		Classified: p.Classified,
		Categories: make(map[string]*model.CategoryBucket, len(p.Categories)),
		Details:    append([]model.Detail(nil), p.Details...),
		Moved:      p.Moved,
		Skipped:    p.Skipped,
	}
	for name, b := range p.Categories {
		out.Categories[name] = &model.CategoryBucket{
			Count:     b.Count,
			Bookmarks: append([]model.FlatBookmark{}, b.Bookmarks...),
		}
	}
	if p.Meta != nil {
		out.Meta = &model.PlanMeta{ScopeFolderIDs: append([]string(nil), p.Meta.ScopeFolderIDs...)}
	}
	return out
}
