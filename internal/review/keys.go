package review

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the plan review screen.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Next    key.Binding
	Prev    key.Binding
	ToOther key.Binding
	YankURL key.Binding
	Accept  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns vim-style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("l", "next category"),
		),
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "shift+tab"),
			key.WithHelp("h", "prev category"),
		),
		ToOther: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "send to other"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "yank URL"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "accept plan"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Next, k.Prev, k.ToOther, k.YankURL, k.Accept, k.Quit}
}
