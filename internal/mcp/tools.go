// Package mcp exposes the organizer as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nikbrunner/tidymark/internal/bookmarks"
	"github.com/nikbrunner/tidymark/internal/config"
	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/organizer"
)

// Deps are the collaborators the tools work with.
type Deps struct {
	Service  *organizer.Service
	Tree     bookmarks.Tree
	Settings config.Settings
	// Persist is called after apply_plan succeeds. Optional.
	Persist func(context.Context) error
}

// NewServer returns an MCP server with every tool registered.
func NewServer(name, version string, deps Deps) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	RegisterTools(s, deps)
	return s
}

// RegisterTools adds the preview, apply and lookup tools to s.
func RegisterTools(s *server.MCPServer, deps Deps) {
	s.AddTool(treeTool(), treeHandler(deps))
	s.AddTool(searchTool(), searchHandler(deps))
	s.AddTool(previewRulesTool(), previewRulesHandler(deps))
	s.AddTool(refinePlanTool(), refinePlanHandler(deps))
	s.AddTool(previewInferTool(), previewInferHandler(deps))
	s.AddTool(applyPlanTool(), applyPlanHandler(deps))
}

func scopeArg() mcp.ToolOption {
	return mcp.WithArray("scope_ids",
		mcp.Description("Folder ids to organize. Omit to organize the whole tree."),
		mcp.Items(map[string]any{"type": "string"}),
	)
}

func planArg() mcp.ToolOption {
	return mcp.WithString("plan",
		mcp.Description("Plan JSON as returned by a preview tool"),
		mcp.Required(),
	)
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Show the folder structure with folder ids, for choosing scopes."),
	)
}

func treeHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		roots, err := deps.Tree.GetTree(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		writeFolders(&sb, roots, 0)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func writeFolders(sb *strings.Builder, nodes []model.Node, depth int) {
	for _, n := range nodes {
		if !n.IsFolder() {
			continue
		}
		links := 0
		for _, c := range n.Children {
			if !c.IsFolder() {
				links++
			}
		}
		fmt.Fprintf(sb, "%s%s  %s (%d)\n", strings.Repeat("  ", depth), n.ID, n.Title, links)
		writeFolders(sb, n.Children, depth+1)
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Fuzzy search bookmarks by title and URL."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
	)
}

func searchHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		nodes, err := deps.Tree.Search(ctx, query)
		if err != nil {
			return toolError(err)
		}
		if len(nodes) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, n := range nodes {
			fmt.Fprintf(&sb, "%s  %s  %s\n", n.ID, n.Title, n.URL)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- preview_rules ---

func previewRulesTool() mcp.Tool {
	return mcp.NewTool("preview_rules",
		mcp.WithDescription("Classify bookmarks with the keyword rules and return a plan. Nothing is moved."),
		scopeArg(),
	)
}

func previewRulesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plan, err := deps.Service.PreviewByRules(ctx, deps.Settings, req.GetStringSlice("scope_ids", nil))
		if err != nil {
			return toolError(err)
		}
		return planResult(plan)
	}
}

// --- refine_plan ---

func refinePlanTool() mcp.Tool {
	return mcp.NewTool("refine_plan",
		mcp.WithDescription("Ask the configured AI provider to move bookmarks between the plan's existing categories. Returns the plan unchanged when AI is disabled."),
		planArg(),
	)
}

func refinePlanHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plan, err := parsePlan(req)
		if err != nil {
			return toolError(err)
		}
		refined, err := deps.Service.RefinePlanWithAI(ctx, deps.Settings, plan)
		if err != nil {
			return toolError(err)
		}
		return planResult(refined)
	}
}

// --- preview_infer ---

func previewInferTool() mcp.Tool {
	return mcp.NewTool("preview_infer",
		mcp.WithDescription("Let the AI provider invent categories for the bookmarks and return a plan. Nothing is moved."),
		scopeArg(),
	)
}

func previewInferHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plan, err := deps.Service.PreviewByAIInference(ctx, deps.Settings, req.GetStringSlice("scope_ids", nil))
		if err != nil {
			return toolError(err)
		}
		return planResult(plan)
	}
}

// --- apply_plan ---

func applyPlanTool() mcp.Tool {
	return mcp.NewTool("apply_plan",
		mcp.WithDescription("Move bookmarks into the folders named by the plan and remove emptied folders."),
		planArg(),
	)
}

// applyPlanHandler runs one apply at a time; the stdio server dispatches
// tool calls concurrently.
func applyPlanHandler(deps Deps) server.ToolHandlerFunc {
	var mu sync.Mutex
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plan, err := parsePlan(req)
		if err != nil {
			return toolError(err)
		}

		mu.Lock()
		defer mu.Unlock()

		result, err := deps.Service.ApplyPlan(ctx, deps.Settings, plan)
		if err != nil {
			return toolError(err)
		}
		if deps.Persist != nil {
			if err := deps.Persist(ctx); err != nil {
				return toolError(fmt.Errorf("save bookmarks: %w", err))
			}
		}
		return mcp.NewToolResultText(fmt.Sprintf("Moved %d bookmarks, skipped %d.", result.Moved, result.Skipped)), nil
	}
}

func parsePlan(req mcp.CallToolRequest) (*model.Plan, error) {
	raw := req.GetString("plan", "")
	if raw == "" {
		return nil, fmt.Errorf("plan is required")
	}
	var plan model.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if plan.Categories == nil {
		plan.Categories = map[string]*model.CategoryBucket{}
	}
	return &plan, nil
}

func planResult(plan *model.Plan) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
