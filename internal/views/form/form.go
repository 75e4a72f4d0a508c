// Package form is a focus-cycling stack of labelled text inputs shared by
// the console's dialogs.
package form

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/theme"
)

// Spec describes one input.
type Spec struct {
	Label       string
	Placeholder string
	Password    bool
	CharLimit   int
}

type field struct {
	label string
	input textinput.Model
	err   string
}

// Form holds the inputs and which one has focus.
type Form struct {
	fields []field
	focus  int
}

var (
	nextKey = key.NewBinding(key.WithKeys("tab", "down"))
	prevKey = key.NewBinding(key.WithKeys("shift+tab", "up"))
)

// New builds a form with the first input focused.
func New(specs ...Spec) Form {
	f := Form{fields: make([]field, len(specs))}
	for i, s := range specs {
		ti := textinput.New()
		ti.Placeholder = s.Placeholder
		ti.Prompt = "› "
		ti.CharLimit = 256
		if s.CharLimit > 0 {
			ti.CharLimit = s.CharLimit
		}
		if s.Password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.fields[i] = field{label: s.Label, input: ti}
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Len returns the number of inputs.
func (f Form) Len() int { return len(f.fields) }

// Focused returns the index of the focused input.
func (f Form) Focused() int { return f.focus }

// Focus moves focus to input i.
func (f *Form) Focus(i int) tea.Cmd {
	if i < 0 || i >= len(f.fields) {
		return nil
	}
	f.fields[f.focus].input.Blur()
	f.focus = i
	return f.fields[i].input.Focus()
}

// Next and Prev cycle focus, wrapping around.
func (f *Form) Next() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	return f.Focus((f.focus + 1) % len(f.fields))
}

func (f *Form) Prev() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	return f.Focus((f.focus - 1 + len(f.fields)) % len(f.fields))
}

// Blur removes focus from every input.
func (f *Form) Blur() {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
}

// Value returns input i's trimmed text.
func (f Form) Value(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return strings.TrimSpace(f.fields[i].input.Value())
}

// Raw returns input i's text untrimmed.
func (f Form) Raw(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return f.fields[i].input.Value()
}

func (f *Form) SetValue(i int, v string) {
	if i >= 0 && i < len(f.fields) {
		f.fields[i].input.SetValue(v)
	}
}

// SetError attaches a message under input i. An empty message clears it.
func (f *Form) SetError(i int, msg string) {
	if i >= 0 && i < len(f.fields) {
		f.fields[i].err = msg
	}
}

func (f Form) Error(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return f.fields[i].err
}

// Reset clears every input and error and focuses the first input.
func (f *Form) Reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
		f.fields[i].err = ""
	}
	f.Focus(0)
}

// Update handles focus keys and forwards everything else to the focused
// input. It reports the index of the input whose value changed, or -1.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd, int) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, nextKey):
			return f, f.Next(), -1
		case key.Matches(km, prevKey):
			return f, f.Prev(), -1
		}
	}
	if len(f.fields) == 0 {
		return f, nil, -1
	}
	before := f.fields[f.focus].input.Value()
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	changed := -1
	if f.fields[f.focus].input.Value() != before {
		changed = f.focus
	}
	return f, cmd, changed
}

// View renders labels, inputs and error lines stacked vertically.
func (f Form) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	focusLabel := lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true)

	var lines []string
	for i, fl := range f.fields {
		ls := labelStyle
		if i == f.focus && fl.input.Focused() {
			ls = focusLabel
		}
		lines = append(lines, ls.Render(fl.label), fl.input.View())
		if fl.err != "" {
			lines = append(lines, theme.StyleError.Render("  ✗ "+fl.err))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
