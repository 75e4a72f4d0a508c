package users

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the table's bindings.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	Search         key.Binding
	Select         key.Binding
	SelectPage     key.Binding
	Reload         key.Binding
	Create         key.Binding
	Edit           key.Binding
	Block          key.Binding
	BlockSelected  key.Binding
	Delete         key.Binding
	DeleteSelected key.Binding
	Confirm        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev row"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next row"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←", "prev page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		SelectPage: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select page"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new account"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Block: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "block/unblock"),
		),
		BlockSelected: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "block/unblock selected"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		DeleteSelected: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "delete selected"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
	}
}
