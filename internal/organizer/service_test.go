package organizer_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/tidymark/internal/ai"
	"github.com/nikbrunner/tidymark/internal/bookmarks"
	"github.com/nikbrunner/tidymark/internal/config"
	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/organizer"
)

type fakeCompleter struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

func testSettings() config.Settings {
	cfg := config.Default()
	cfg.ClassificationLanguage = model.LanguageEn
	cfg.ClassificationRules = devRules
	cfg.EnableAI = true
	cfg.AIAPIKey = "test"
	cfg.AIMaxRetries = 0
	cfg.AIRetryDelayMs = 1
	return cfg
}

func newService(t *testing.T, tree bookmarks.Tree, fake *fakeCompleter) *organizer.Service {
	t.Helper()
	opts := []organizer.Option{organizer.WithLogger(zaptest.NewLogger(t))}
	if fake != nil {
		opts = append(opts, organizer.WithCompleterFactory(func(config.Settings) (organizer.Completer, error) {
			return fake, nil
		}))
	}
	return organizer.NewService(tree, opts...)
}

func TestService_PreviewThenApply(t *testing.T) {
	ctx := context.Background()
	tree := bookmarks.NewMemoryTree(scenarioStore())
	svc := newService(t, tree, nil)
	cfg := testSettings()

	plan, err := svc.PreviewByRules(ctx, cfg, []string{model.BookmarksBarID})
	assert.NilError(t, err)
	assert.NilError(t, plan.Validate(other))
	assert.Equal(t, plan.Total, 3)
	assert.Equal(t, plan.Classified, 2)
	assert.Equal(t, plan.Categories["Dev"].Count, 2)
	assert.Equal(t, plan.Categories[other].Count, 1)
	assert.DeepEqual(t, plan.Meta.ScopeFolderIDs, []string{model.BookmarksBarID})

	applied, err := svc.ApplyPlan(ctx, cfg, plan)
	assert.NilError(t, err)
	assert.Equal(t, applied.Moved, 3)

	again, err := svc.ApplyPlan(ctx, cfg, plan)
	assert.NilError(t, err)
	assert.Equal(t, again.Moved, 0)
}

func TestService_PreviewWholeTree(t *testing.T) {
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), nil)

	plan, err := svc.PreviewByRules(context.Background(), testSettings(), nil)
	assert.NilError(t, err)
	assert.Equal(t, plan.Total, 3)
	assert.Assert(t, plan.Meta == nil)
	for _, d := range plan.Details {
		assert.Equal(t, d.ScopeFolderID, "")
	}
}

func TestService_PreviewDuplicateScopes(t *testing.T) {
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), nil)

	plan, err := svc.PreviewByRules(context.Background(), testSettings(), []string{"1", "old", "1"})
	assert.NilError(t, err)
	assert.Equal(t, plan.Total, 3)
	assert.DeepEqual(t, plan.Meta.ScopeFolderIDs, []string{"1", "old"})
}

func TestService_PreviewUnknownScope(t *testing.T) {
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), nil)

	_, err := svc.PreviewByRules(context.Background(), testSettings(), []string{"nope"})
	assert.Assert(t, errors.Is(err, bookmarks.ErrNotFound))
}

func rulePreview(t *testing.T, svc *organizer.Service) *model.Plan {
	t.Helper()
	plan, err := svc.PreviewByRules(context.Background(), testSettings(), []string{model.BookmarksBarID})
	assert.NilError(t, err)
	return plan
}

func TestRefine_AppliesSuggestions(t *testing.T) {
	fake := &fakeCompleter{reply: "Sure:\n```json\n" +
		`{"reassigned_items":[{"id":"b2","from_key":"Others","to_key":"Dev","confidence":0.9}]}` +
		"\n```"}
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), fake)
	plan := rulePreview(t, svc)

	refined, err := svc.RefinePlanWithAI(context.Background(), testSettings(), plan)
	assert.NilError(t, err)
	assert.NilError(t, refined.Validate(other))
	assert.Equal(t, refined.Categories["Dev"].Count, 3)
	assert.Equal(t, refined.Classified, 3)
	assert.Equal(t, fake.calls.Load(), int32(1))

	// The input plan is untouched.
	assert.Equal(t, plan.Categories["Dev"].Count, 2)
}

func TestRefine_PassthroughWhenDisabled(t *testing.T) {
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), nil)
	plan := rulePreview(t, svc)

	cfg := testSettings()
	cfg.EnableAI = false
	got, err := svc.RefinePlanWithAI(context.Background(), cfg, plan)
	assert.NilError(t, err)
	assert.Assert(t, got == plan)
}

func TestRefine_ConfigErrorsPropagate(t *testing.T) {
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), nil)
	plan := rulePreview(t, svc)

	cfg := testSettings()
	cfg.AIProvider = "bogus"
	_, err := svc.RefinePlanWithAI(context.Background(), cfg, plan)

	var cfgErr *ai.ConfigError
	assert.Assert(t, errors.As(err, &cfgErr))
	assert.Assert(t, !errors.Is(err, ai.ErrAIDisabled))
}

func TestRefine_PassthroughWhenEveryBatchFails(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompleter
	}{
		{name: "transport error", fake: &fakeCompleter{err: errors.New("connection reset")}},
		{name: "no json", fake: &fakeCompleter{reply: "I cannot help with that."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), tt.fake)
			plan := rulePreview(t, svc)

			got, err := svc.RefinePlanWithAI(context.Background(), testSettings(), plan)
			assert.NilError(t, err)
			assert.Assert(t, got == plan)
			assert.Equal(t, tt.fake.calls.Load(), int32(1))
		})
	}
}

func TestInfer_BuildsOpenTaxonomy(t *testing.T) {
	fake := &fakeCompleter{reply: `{"categories":["Code","Misc"],` +
		`"assignments":[{"id":"b1","category":"Code"},{"id":"b3","to_key":"Code"},{"id":"b2","category":"Misc"}],` +
		`"notes":{"low_confidence_items":["b2"]}}`}
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), fake)

	plan, err := svc.PreviewByAIInference(context.Background(), testSettings(), []string{model.BookmarksBarID})
	assert.NilError(t, err)
	assert.NilError(t, plan.Validate(other))
	assert.Equal(t, plan.Categories["Code"].Count, 2)
	assert.Equal(t, plan.Categories["Misc"].Count, 0)
	assert.Equal(t, plan.Categories[other].Count, 1)
	assert.Equal(t, plan.Classified, 2)
}

func TestInfer_RequiresAI(t *testing.T) {
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), nil)

	cfg := testSettings()
	cfg.EnableAI = false
	_, err := svc.PreviewByAIInference(context.Background(), cfg, nil)
	assert.Assert(t, errors.Is(err, ai.ErrAIDisabled))
}

func TestInfer_NothingAssigned(t *testing.T) {
	fake := &fakeCompleter{reply: `{"categories":[],"assignments":[]}`}
	svc := newService(t, bookmarks.NewMemoryTree(scenarioStore()), fake)

	_, err := svc.PreviewByAIInference(context.Background(), testSettings(), nil)
	assert.Assert(t, errors.Is(err, organizer.ErrNoAssignments))
}

func TestInfer_EmptyScope(t *testing.T) {
	store := model.NewStore()
	store.Folders = append(store.Folders, model.Folder{ID: "empty", Title: "Empty", ParentID: model.BookmarksBarID})
	fake := &fakeCompleter{}
	svc := newService(t, bookmarks.NewMemoryTree(store), fake)

	plan, err := svc.PreviewByAIInference(context.Background(), testSettings(), []string{"empty"})
	assert.NilError(t, err)
	assert.Equal(t, plan.Total, 0)
	assert.Equal(t, fake.calls.Load(), int32(0))
}
