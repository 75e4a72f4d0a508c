// Package help renders the keybinding reference as Markdown.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/theme"
)

const reference = `# DigiMonnaie console

## Navigation

- ` + "`1`-`6`" + ` jump to Dashboard, Users, Deposit, History, Cancel, Profile
- ` + "`tab`" + ` / ` + "`shift+tab`" + ` (or ` + "`ctrl+n`" + ` / ` + "`ctrl+p`" + `) next and previous section
- ` + "`m`" + ` or ` + "`ctrl+g`" + ` toggle the navigation drawer
- ` + "`t`" + ` or ` + "`ctrl+t`" + ` cycle theme (light, dark, system)
- ` + "`ctrl+l`" + ` toggle the event log
- ` + "`?`" + ` or ` + "`f1`" + ` this page
- ` + "`L`" + ` or ` + "`ctrl+x`" + ` log out
- ` + "`q`" + ` / ` + "`ctrl+c`" + ` quit

Inside a form, letters and ` + "`tab`" + ` go to the form; use the ctrl variants.

## Users

- ` + "`space`" + ` select row, ` + "`a`" + ` select page
- ` + "`n`" + ` new user wizard, ` + "`e`" + ` edit row
- ` + "`b`" + ` / ` + "`B`" + ` block or unblock selection
- ` + "`x`" + ` / ` + "`X`" + ` delete row or selection
- ` + "`/`" + ` search, ` + "`[`" + ` / ` + "`]`" + ` page, ` + "`r`" + ` reload

## Forms

- ` + "`tab`" + ` / ` + "`shift+tab`" + ` move between fields
- ` + "`enter`" + ` next field or submit
- ` + "`ctrl+s`" + ` save, ` + "`esc`" + ` close dialog
- ` + "`ctrl+b`" + ` previous wizard step

## Transactions

- ` + "`/`" + ` search, ` + "`[`" + ` / ` + "`]`" + ` page
- ` + "`c`" + ` or ` + "`enter`" + ` cancel the selected transaction

Sessions end after a period without keyboard or mouse activity.
`

// Reference returns the Markdown source of the help page.
func Reference() string { return reference }

var (
	upKey   = key.NewBinding(key.WithKeys("up", "k"))
	downKey = key.NewBinding(key.WithKeys("down", "j"))
)

// Model is a scrollable rendered help page.
type Model struct {
	style    string
	width    int
	rendered string
	offset   int
}

// New returns a help page using the glamour standard style for mode.
func New(mode theme.Mode) Model {
	return Model{style: styleFor(mode)}
}

func styleFor(mode theme.Mode) string {
	if mode.Dark() {
		return "dark"
	}
	return "light"
}

// SetTheme switches between the light and dark glamour styles.
func (m *Model) SetTheme(mode theme.Mode) {
	if s := styleFor(mode); s != m.style {
		m.style = s
		m.rendered = ""
	}
}

// Render converts the reference to terminal output wrapped at width.
func Render(style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(reference)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, upKey):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, downKey):
			m.offset++
		}
	}
	return m, nil
}

// View renders the page into a width x height box.
func (m *Model) View(width, height int) string {
	wrap := max(width-4, 20)
	if m.rendered == "" || m.width != wrap {
		out, err := Render(m.style, wrap)
		if err != nil {
			out = reference
		}
		m.rendered = out
		m.width = wrap
	}

	lines := strings.Split(strings.TrimRight(m.rendered, "\n"), "\n")
	visible := max(height-2, 1)
	m.offset = min(m.offset, max(len(lines)-visible, 0))
	end := min(m.offset+visible, len(lines))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(strings.Join(lines[m.offset:end], "\n"))
}
