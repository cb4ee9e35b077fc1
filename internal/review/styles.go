package review

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the review screen.
type Styles struct {
	Title        lipgloss.Style
	Category     lipgloss.Style
	Count        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Changed      lipgloss.Style
	URL          lipgloss.Style
	Status       lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// DefaultStyles returns the grayscale palette with a teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),

		Category: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Count: lipgloss.NewStyle().
			Foreground(subtle),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(2),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(2).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Changed: lipgloss.NewStyle().
			Foreground(accent).
			Italic(true),

		URL: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(4),

		Status: lipgloss.NewStyle().
			Foreground(accent).
			PaddingTop(1),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
