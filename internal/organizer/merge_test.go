package organizer_test

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/tidymark/internal/ai"
	"github.com/nikbrunner/tidymark/internal/classify"
	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/organizer"
)

const other = "Others"

func conf(v float64) *float64 { return &v }

func basePlan() *model.Plan {
	flat := []model.FlatBookmark{
		{ID: "1", Title: "a", URL: "https://a.example"},
		{ID: "2", Title: "b", URL: "https://b.example"},
		{ID: "3", Title: "c", URL: "https://c.example"},
	}
	cats := map[string]string{"1": "A", "2": "B", "3": other}
	return classify.BuildPlan(flat, func(b model.FlatBookmark) string { return cats[b.ID] }, other)
}

func categoryOf(p *model.Plan, id string) string {
	for _, d := range p.Details {
		if d.Bookmark.ID == id {
			return d.Category
		}
	}
	return ""
}

func TestMergeRefine_AppliesAllowedTargets(t *testing.T) {
	base := basePlan()
	results := []*ai.RefineResult{{Items: []ai.Reassignment{
		{ID: "3", ToKey: "A", Confidence: conf(0.9)},
		{ID: "2", ToKey: "A"}, // no confidence is accepted
	}}}

	got := organizer.MergeRefine(base, results, other)

	assert.Equal(t, categoryOf(got, "3"), "A")
	assert.Equal(t, categoryOf(got, "2"), "A")
	assert.Equal(t, got.Categories["A"].Count, 3)
	assert.Assert(t, got.Categories["B"] == nil)
	assert.Equal(t, got.Classified, 3)
	assert.NilError(t, got.Validate(other))

	// Base plan is untouched
	assert.Equal(t, categoryOf(base, "3"), other)
	assert.Equal(t, base.Classified, 2)
}

func TestMergeRefine_RejectsUnknownCategory(t *testing.T) {
	results := []*ai.RefineResult{{Items: []ai.Reassignment{{ID: "1", ToKey: "C", Confidence: conf(0.99)}}}}

	got := organizer.MergeRefine(basePlan(), results, other)

	assert.Equal(t, categoryOf(got, "1"), "A")
	assert.Assert(t, got.Categories["C"] == nil)
}

func TestMergeRefine_LowConfidence(t *testing.T) {
	results := []*ai.RefineResult{
		{Items: []ai.Reassignment{
			{ID: "1", ToKey: "B", Confidence: conf(0.95)},
			{ID: "3", ToKey: "B", Confidence: conf(0.49)},
		}},
		nil, // failed batch
		{LowConfidence: []string{"1"}},
	}

	got := organizer.MergeRefine(basePlan(), results, other)

	// Listed as low confidence in another batch
	assert.Equal(t, categoryOf(got, "1"), "A")
	// Below threshold
	assert.Equal(t, categoryOf(got, "3"), other)
}

func TestMergeRefine_IgnoresUnknownIDs(t *testing.T) {
	results := []*ai.RefineResult{{Items: []ai.Reassignment{{ID: "404", ToKey: "A"}}}}

	got := organizer.MergeRefine(basePlan(), results, other)

	assert.Equal(t, got.Total, 3)
	assert.NilError(t, got.Validate(other))
}

func TestMergeInfer(t *testing.T) {
	flat := []model.FlatBookmark{
		{ID: "1", URL: "https://a.example"},
		{ID: "2", URL: "https://b.example"},
		{ID: "3", URL: "https://c.example"},
		{ID: "4", URL: "https://d.example"},
	}
	results := []*ai.InferResult{
		{
			Categories:  []string{"Dev", "Reading", "Unused"},
			Assignments: []ai.Assignment{{ID: "1", ToKey: "Dev"}, {ID: "2", ToKey: "Reading"}},
		},
		nil,
		{
			Assignments:   []ai.Assignment{{ID: "3", ToKey: "Dev"}, {ID: "2", ToKey: "Dev"}},
			LowConfidence: []string{"3"},
		},
	}

	plan, err := organizer.MergeInfer(flat, results, other, []string{"1"})
	assert.NilError(t, err)

	assert.Equal(t, categoryOf(plan, "1"), "Dev")
	assert.Equal(t, categoryOf(plan, "2"), "Reading") // first batch wins
	assert.Equal(t, categoryOf(plan, "3"), other)     // low confidence
	assert.Equal(t, categoryOf(plan, "4"), other)     // unassigned
	assert.Equal(t, plan.Categories["Unused"].Count, 0)
	assert.Equal(t, plan.Classified, 2)
	assert.DeepEqual(t, plan.Meta.ScopeFolderIDs, []string{"1"})
	assert.NilError(t, plan.Validate(other))
}

func TestMergeInfer_NothingProduced(t *testing.T) {
	flat := []model.FlatBookmark{{ID: "1", URL: "https://a.example"}}

	for _, results := range [][]*ai.InferResult{
		nil,
		{nil, nil},
		{{Categories: []string{"Dev"}}},
	} {
		_, err := organizer.MergeInfer(flat, results, other, nil)
		assert.Assert(t, errors.Is(err, organizer.ErrNoAssignments))
	}
}
