package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console-wide keyboard bindings. Section views add
// their own on top of these.
type KeyMap struct {
	Section     [len(sections)]key.Binding
	NextSection key.Binding
	PrevSection key.Binding
	Drawer      key.Binding
	Theme       key.Binding
	Logout      key.Binding
	Help        key.Binding
	EventLog    key.Binding
	Confirm     key.Binding
	Escape      key.Binding
	Quit        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	LogFilter   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		NextSection: key.NewBinding(
			key.WithKeys("tab", "ctrl+n"),
			key.WithHelp("tab", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab", "ctrl+p"),
			key.WithHelp("shift+tab", "prev section"),
		),
		Drawer: key.NewBinding(
			key.WithKeys("m", "ctrl+g"),
			key.WithHelp("m", "menu"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t", "ctrl+t"),
			key.WithHelp("t", "theme"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L", "ctrl+x"),
			key.WithHelp("L", "logout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		EventLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "event log"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
		),
		LogFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter events"),
		),
	}
	for i, s := range sections {
		n := string(rune('1' + i))
		km.Section[i] = key.NewBinding(
			key.WithKeys(n),
			key.WithHelp(n, s.title),
		)
	}
	return km
}
