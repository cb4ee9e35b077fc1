// Package picker is a small selection list for fuzzy search results.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("73")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// Picker lets the user choose one search result.
type Picker struct {
	results   []search.Result
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker over results.
func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, keys.Select):
			p.selected = true
			return p, tea.Quit
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n")

	for i, r := range p.results {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, highlight(r, style))
		fmt.Fprintf(&b, "   %s\n", urlStyle.Render(r.Bookmark.URL))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k: move  Enter: select  q/Esc: cancel"))
	return b.String()
}

// highlight renders the title with the fuzzy-matched characters marked.
// Match indexes are byte offsets into "title url".
func highlight(r search.Result, base lipgloss.Style) string {
	title := r.Bookmark.Title
	matched := make(map[int]bool, len(r.MatchedIndexes))
	for _, i := range r.MatchedIndexes {
		if i < len(title) {
			matched[i] = true
		}
	}
	if len(matched) == 0 {
		return base.Render(title)
	}

	var b strings.Builder
	for i, ch := range title {
		if matched[i] {
			b.WriteString(matchStyle.Render(string(ch)))
		} else {
			b.WriteString(base.Render(string(ch)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the chosen bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return nil
	}
	return p.results[p.cursor].Bookmark
}

// Cancelled reports whether the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
