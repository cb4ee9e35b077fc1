// Package organizer builds reorganization plans for a bookmark tree and
// applies them.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/tidymark/internal/ai"
	"github.com/nikbrunner/tidymark/internal/bookmarks"
	"github.com/nikbrunner/tidymark/internal/classify"
	"github.com/nikbrunner/tidymark/internal/config"
	"github.com/nikbrunner/tidymark/internal/model"
)

// Completer sends a prompt to a model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFactory builds a Completer for the given settings. It returns a
// *ai.ConfigError when the settings do not allow AI use.
type CompleterFactory func(config.Settings) (Completer, error)

// Service exposes the preview and apply operations. Settings are passed to
// every call and never modified.
type Service struct {
	tree         bookmarks.Tree
	newCompleter CompleterFactory
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCompleterFactory replaces the AI client constructor.
func WithCompleterFactory(f CompleterFactory) Option {
	return func(s *Service) {
		s.newCompleter = f
	}
}

// NewService creates a Service over tree.
func NewService(tree bookmarks.Tree, opts ...Option) *Service {
	s := &Service{tree: tree, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.newCompleter == nil {
		s.newCompleter = func(cfg config.Settings) (Completer, error) {
			c, err := ai.NewClient(cfg, ai.WithLogger(s.logger))
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return s
}

// PreviewByRules classifies the bookmarks below scopeIDs (the whole tree
// when empty) with the configured rules, or the built-in ones.
func (s *Service) PreviewByRules(ctx context.Context, cfg config.Settings, scopeIDs []string) (*model.Plan, error) {
	flat, scopes, err := s.collect(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}

	other := cfg.Other()
	return classify.BuildPlan(flat, classify.RuleClassifier(rulesFor(cfg), other), other, classify.WithScopes(scopes...)), nil
}

// RefinePlanWithAI asks the model to move bookmarks between the plan's
// existing categories. With AI disabled, or when no batch yields anything,
// plan is returned unchanged. Other configuration problems are errors.
func (s *Service) RefinePlanWithAI(ctx context.Context, cfg config.Settings, plan *model.Plan) (*model.Plan, error) {
	if plan == nil {
		return nil, errors.New("nil plan")
	}
	cfg = cfg.Normalize()

	completer, err := s.newCompleter(cfg)
	if errors.Is(err, ai.ErrAIDisabled) {
		return plan, nil
	}
	if err != nil {
		return nil, err
	}
	if len(plan.Details) == 0 {
		return plan, nil
	}

	lang := cfg.Language()
	hints := categoryHints(plan, rulesFor(cfg))
	items := make([]ai.OrganizeItem, 0, len(plan.Details))
	for _, d := range plan.Details {
		items = append(items, ai.OrganizeItem{ID: d.Bookmark.ID, Title: d.Bookmark.Title, URL: d.Bookmark.URL, FromKey: d.Category})
	}

	results, err := ai.RunBatched(ctx, items, cfg.AIBatchSize, cfg.AIConcurrency, func(ctx context.Context, batch []ai.OrganizeItem) (*ai.RefineResult, error) {
		prompt := ai.BuildOrganizePrompt(cfg.AIPromptOrganize, lang, hints, batch)
		parsed, err := s.ask(ctx, cfg, completer, prompt)
		if err != nil {
			return nil, err
		}
		return ai.DecodeRefine(parsed), nil
	})
	if err != nil {
		return nil, err
	}

	if allNil(results) {
		s.logger.Warn("refine: no batch produced usable output, keeping rule plan", zap.Int("batches", len(results)))
		return plan, nil
	}
	return MergeRefine(plan, results, cfg.Other()), nil
}

// PreviewByAIInference lets the model invent categories for the bookmarks
// below scopeIDs. Unlike refine, AI must be usable and must produce at
// least one assignment.
func (s *Service) PreviewByAIInference(ctx context.Context, cfg config.Settings, scopeIDs []string) (*model.Plan, error) {
	cfg = cfg.Normalize()

	completer, err := s.newCompleter(cfg)
	if err != nil {
		return nil, err
	}

	flat, scopes, err := s.collect(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}
	other := cfg.Other()
	if len(flat) == 0 {
		return classify.BuildPlan(nil, nil, other, classify.WithScopes(scopes...)), nil
	}

	lang := cfg.Language()
	items := make([]ai.InferItem, 0, len(flat))
	for _, b := range flat {
		items = append(items, ai.InferItem{ID: b.ID, Title: b.Title, URL: b.URL})
	}

	results, err := ai.RunBatched(ctx, items, cfg.AIBatchSize, cfg.AIConcurrency, func(ctx context.Context, batch []ai.InferItem) (*ai.InferResult, error) {
		prompt := ai.BuildInferPrompt(cfg.AIPromptInfer, lang, batch)
		parsed, err := s.ask(ctx, cfg, completer, prompt)
		if err != nil {
			return nil, err
		}
		return ai.DecodeInfer(parsed), nil
	})
	if err != nil {
		return nil, err
	}

	return MergeInfer(flat, results, other, scopes)
}

// ApplyPlan executes plan against the tree.
func (s *Service) ApplyPlan(ctx context.Context, cfg config.Settings, plan *model.Plan) (*model.Plan, error) {
	return NewExecutor(s.tree, cfg.Other(), s.logger).Execute(ctx, plan)
}

// ask sends prompt with retries and parses the reply. A reply with nothing
// usable is reported as an error so the batch counts as failed.
func (s *Service) ask(ctx context.Context, cfg config.Settings, c Completer, prompt string) (map[string]any, error) {
	delay := time.Duration(cfg.AIRetryDelayMs) * time.Millisecond
	text, err := ai.Retry(ctx, cfg.AIMaxRetries, delay, func(ctx context.Context) (string, error) {
		return c.Complete(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	parsed := ai.ParseContent(text)
	if parsed == nil {
		return nil, fmt.Errorf("%w: no JSON found in reply", ai.ErrInvalidResponse)
	}
	return parsed, nil
}

// collect flattens the requested scopes. Duplicate scope ids are dropped.
func (s *Service) collect(ctx context.Context, scopeIDs []string) ([]model.FlatBookmark, []string, error) {
	if len(scopeIDs) == 0 {
		roots, err := s.tree.GetTree(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("read bookmark tree: %w", err)
		}
		return classify.Flatten(roots, ""), nil, nil
	}

	var (
		scopes []classify.Scope
		ids    []string
		seen   = make(map[string]bool)
	)
	for _, id := range scopeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		nodes, err := s.tree.GetSubTree(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("read scope %s: %w", id, err)
		}
		scopes = append(scopes, classify.Scope{ID: id, Nodes: nodes})
		ids = append(ids, id)
	}
	return classify.FlattenScopes(scopes), ids, nil
}

func rulesFor(cfg config.Settings) []model.Rule {
	if len(cfg.ClassificationRules) > 0 {
		return cfg.ClassificationRules
	}
	return classify.DefaultRules(cfg.Language())
}

// categoryHints lists the plan's categories with the keywords of the rule
// that produced them, if any.
func categoryHints(plan *model.Plan, rules []model.Rule) []ai.CategoryHint {
	keywords := make(map[string][]string, len(rules))
	for _, r := range rules {
		keywords[r.Category] = append(keywords[r.Category], r.Keywords...)
	}

	names := plan.CategoryNames()
	hints := make([]ai.CategoryHint, 0, len(names))
	for _, name := range names {
		kw := keywords[name]
		if kw == nil {
			kw = []string{}
		}
		hints = append(hints, ai.CategoryHint{Name: name, Keywords: kw})
	}
	return hints
}

func allNil[R any](results []*R) bool {
	for _, r := range results {
		if r != nil {
			return false
		}
	}
	return true
}
