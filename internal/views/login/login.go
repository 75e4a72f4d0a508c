// Package login is the sign-in form shown whenever no session exists.
package login

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/form"
)

const (
	fieldEmail = iota
	fieldPassword
)

// API is the backend surface the form needs.
type API interface {
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
}

// DoneMsg carries the login response.
type DoneMsg struct {
	Result *client.LoginResult
	Err    error
}

// AuthenticatedMsg tells the root model a session was obtained.
type AuthenticatedMsg struct {
	Result *client.LoginResult
}

var submitKey = key.NewBinding(key.WithKeys("enter"))

// Model is the login form.
type Model struct {
	api     API
	form    form.Form
	loading bool
	err     string
	Width   int
}

func New(api API) Model {
	return Model{
		api: api,
		form: form.New(
			form.Spec{Label: "Email", Placeholder: "admin@digimonnaie.com"},
			form.Spec{Label: "Password", Password: true},
		),
	}
}

// Reset clears the form, keeping nothing from a previous session.
func (m *Model) Reset() {
	m.form.Reset()
	m.loading = false
	m.err = ""
}

func (m Model) Loading() bool { return m.loading }
func (m Model) Err() string { return m.err }

// Update handles input and the login response.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DoneMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = client.UserMessage(msg.Err)
			return m, eventlog.Emit(eventlog.KindErr, "login failed: %v", msg.Err)
		}
		m.err = ""
		res := msg.Result
		return m, tea.Batch(
			func() tea.Msg { return AuthenticatedMsg{Result: res} },
			eventlog.Emit(eventlog.KindAuth, "signed in as %s", res.UserID),
		)

	case tea.KeyMsg:
		if key.Matches(msg, submitKey) {
			if m.form.Focused() == fieldEmail {
				cmd := m.form.Next()
				return m, cmd
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	email, password := m.form.Value(fieldEmail), m.form.Raw(fieldPassword)
	if email == "" || password == "" {
		m.err = "Email and password are required."
		return m, nil
	}
	m.loading = true
	m.err = ""
	api := m.api
	return m, func() tea.Msg {
		res, err := api.Login(context.Background(), email, password)
		return DoneMsg{Result: res, Err: err}
	}
}

// View renders the centered login card.
func (m Model) View() string {
	title := theme.StyleTitle.Render("DigiMonnaie · Admin sign in")

	var status string
	switch {
	case m.loading:
		status = theme.StyleDimmed.Render("Signing in...")
	case m.err != "":
		status = theme.StyleError.Render(m.err)
	}

	help := theme.StyleDimmed.Render("tab:next field  enter:sign in  ctrl+c:quit")
	card := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View(), "", status, help)

	return lipgloss.NewStyle().
		Width(48).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorPrimary).
		Render(card)
}
