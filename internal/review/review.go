// Package review is an interactive screen for checking a plan before it is
// applied. Bookmarks can be moved between the plan's categories; nothing
// touches the bookmark tree.
package review

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/tidymark/internal/model"
)

// Model is the bubbletea model of the review screen.
type Model struct {
	base       *model.Plan
	details    []model.Detail
	initial    []string // category of each detail when the screen opened
	rows       []int    // detail indexes in display order
	categories []string
	other      string

	keys   KeyMap
	styles Styles
	copy   func(string) error

	cursor    int
	offset    int
	status    string
	accepted  bool
	cancelled bool

	width  int
	height int
}

// Params holds parameters for creating a Model.
type Params struct {
	Plan      *model.Plan
	Other     string
	Keys      *KeyMap             // optional
	Styles    *Styles             // optional
	Clipboard func(string) error // optional, defaults to the system clipboard
}

// New creates a review screen over a copy of params.Plan.
func New(params Params) Model {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	plan := params.Plan
	if plan == nil {
		plan = model.NewPlan()
	}

	categories := plan.CategoryNames()
	if !slices.Contains(categories, params.Other) {
		categories = append(categories, params.Other)
	}
	rank := make(map[string]int, len(categories))
	for i, c := range categories {
		rank[c] = i
	}

	details := slices.Clone(plan.Details)
	initial := make([]string, len(details))
	rows := make([]int, len(details))
	for i, d := range details {
		initial[i] = d.Category
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rank[initial[rows[a]]] < rank[initial[rows[b]]]
	})

	return Model{
		base:       plan,
		details:    details,
		initial:    initial,
		rows:       rows,
		categories: categories,
		other:      params.Other,
		keys:       keys,
		styles:     styles,
		copy:       copyFn,
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Accept):
			m.accepted = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Top):
			m.cursor = 0

		case key.Matches(msg, m.keys.Bottom):
			if len(m.rows) > 0 {
				m.cursor = len(m.rows) - 1
			}

		case key.Matches(msg, m.keys.Next):
			m.cycle(1)

		case key.Matches(msg, m.keys.Prev):
			m.cycle(-1)

		case key.Matches(msg, m.keys.ToOther):
			if d := m.selected(); d != nil {
				d.Category = m.other
			}

		case key.Matches(msg, m.keys.YankURL):
			if d := m.selected(); d != nil {
				if err := m.copy(d.Bookmark.URL); err != nil {
					m.status = fmt.Sprintf("copy failed: %v", err)
				} else {
					m.status = "copied " + d.Bookmark.URL
				}
			}
		}
		m.scroll()
	}

	return m, nil
}

func (m *Model) selected() *model.Detail {
	if len(m.rows) == 0 {
		return nil
	}
	return &m.details[m.rows[m.cursor]]
}

func (m *Model) cycle(step int) {
	d := m.selected()
	if d == nil || len(m.categories) == 0 {
		return
	}
	i := slices.Index(m.categories, d.Category)
	n := len(m.categories)
	d.Category = m.categories[((i+step)%n+n)%n]
}

// visible is the number of bookmarks that fit on screen; each takes two lines.
func (m Model) visible() int {
	return max((m.height-8)/2, 3)
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if v := m.visible(); m.cursor >= m.offset+v {
		m.offset = m.cursor - v + 1
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	classified := 0
	for _, d := range m.details {
		if d.Category != m.other {
			classified++
		}
	}
	header := fmt.Sprintf("Review plan: %d bookmarks, %d classified, %d changed", len(m.details), classified, m.Changed())
	b.WriteString(m.styles.Title.Render(header))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(m.styles.Count.Render("Nothing to organize."))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visible(), len(m.rows))
	group := ""
	for pos := m.offset; pos < end; pos++ {
		idx := m.rows[pos]
		if g := m.initial[idx]; pos == m.offset || g != group {
			group = g
			b.WriteString(m.styles.Category.Render(group))
			b.WriteString(" ")
			b.WriteString(m.styles.Count.Render(fmt.Sprintf("(%d)", m.groupSize(group))))
			b.WriteString("\n")
		}

		d := m.details[idx]
		line := d.Bookmark.Title
		if line == "" {
			line = d.Bookmark.URL
		}
		if d.Category != m.initial[idx] {
			line += " " + m.styles.Changed.Render("-> "+d.Category)
		}
		style := m.styles.Item
		if pos == m.cursor {
			style = m.styles.ItemSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
		b.WriteString(m.styles.URL.Render(d.Bookmark.URL))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.hints())
	return b.String()
}

func (m Model) groupSize(name string) int {
	n := 0
	for _, c := range m.initial {
		if c == name {
			n++
		}
	}
	return n
}

func (m Model) hints() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, m.styles.HintKey.Render(h.Key)+" "+m.styles.HintDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// Changed returns how many bookmarks were moved to another category.
func (m Model) Changed() int {
	n := 0
	for i, d := range m.details {
		if d.Category != m.initial[i] {
			n++
		}
	}
	return n
}

// Cancelled reports whether the user left without accepting.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Result returns the reviewed plan, or nil unless the user accepted it.
// Categories of the original plan are kept even when they end up empty.
func (m Model) Result() *model.Plan {
	if !m.accepted {
		return nil
	}
	out := model.NewPlan()
	out.Details = slices.Clone(m.details)
	if m.base.Meta != nil {
		out.Meta = &model.PlanMeta{ScopeFolderIDs: slices.Clone(m.base.Meta.ScopeFolderIDs)}
	}
	out.Rebuild(m.other, m.base.CategoryNames()...)
	return out
}
