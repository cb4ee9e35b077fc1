package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/review"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	subtle = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	nameStyle    = lipgloss.NewStyle().Width(24)
	countStyle   = lipgloss.NewStyle().Foreground(subtle)
	otherStyle   = lipgloss.NewStyle().Width(24).Foreground(subtle).Italic(true)
)

// printSummary writes a per-category overview of plan.
func printSummary(w io.Writer, plan *model.Plan, other string) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%d bookmarks, %d classified", plan.Total, plan.Classified)))
	for _, name := range plan.CategoryNames() {
		style := nameStyle
		if name == other {
			style = otherStyle
		}
		fmt.Fprintf(w, "  %s %s\n", style.Render(name), countStyle.Render(fmt.Sprint(plan.Categories[name].Count)))
	}
	if plan.Moved > 0 || plan.Skipped > 0 {
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("moved %d, skipped %d", plan.Moved, plan.Skipped)))
	}
}

// writePlan writes plan as indented JSON to path, or stdout for "" and "-".
func writePlan(plan *model.Plan, path string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readPlan(path string) (*model.Plan, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var plan model.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if plan.Categories == nil {
		plan.Categories = map[string]*model.CategoryBucket{}
	}
	return &plan, nil
}

// reviewPlan opens the review screen. It returns nil when the user cancels.
func reviewPlan(plan *model.Plan, other string) (*model.Plan, error) {
	m := review.New(review.Params{Plan: plan, Other: other})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("run review: %w", err)
	}
	return final.(review.Model).Result(), nil
}

func joinScopes(ids []string) string {
	if len(ids) == 0 {
		return "whole tree"
	}
	return strings.Join(ids, ", ")
}
