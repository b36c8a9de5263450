package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Selection
	Toggle     key.Binding
	TogglePage key.Binding
	SelectN    key.Binding
	ClearAll   key.Binding

	// View
	Sort    key.Binding
	Reverse key.Binding
	Filter  key.Binding
	Refresh key.Binding

	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown"),
			key.WithHelp("l/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup"),
			key.WithHelp("h/←", "prev page"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle row"),
		),
		TogglePage: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle page"),
		),
		SelectN: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "select first N"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear selection"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "reverse sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload page"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
