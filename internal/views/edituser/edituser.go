// Package edituser is the in-place edit popup for a managed user.
package edituser

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/form"
)

// FailedMessage is shown when the backend rejects the update.
const FailedMessage = "Unable to update user!"

const (
	fieldFullName = iota
	fieldEmail
	fieldPhone
	fieldAddress
	fieldRole
)

// API is the backend surface the popup needs.
type API interface {
	UpdateUser(ctx context.Context, id string, upd client.UserUpdate) error
}

// SavedMsg reports the updated record to the parent list.
type SavedMsg struct {
	User client.User
}

// ClosedMsg reports that the popup was dismissed.
type ClosedMsg struct{}

type doneMsg struct {
	gen  uint64
	user client.User
	err  error
}

var (
	saveKey  = key.NewBinding(key.WithKeys("ctrl+s"))
	enterKey = key.NewBinding(key.WithKeys("enter"))
	closeKey = key.NewBinding(key.WithKeys("esc"))
)

// Model is the edit popup. The zero value is closed.
type Model struct {
	api    API
	user   client.User
	form   form.Form
	open   bool
	saving bool
	err    string
	gen    uint64
}

func New(api API) Model {
	return Model{api: api}
}

// Open shows the popup prefilled with u.
func (m *Model) Open(u client.User) tea.Cmd {
	m.gen++
	m.user = u
	m.open = true
	m.saving = false
	m.err = ""
	m.form = form.New(
		form.Spec{Label: "Full name"},
		form.Spec{Label: "Email"},
		form.Spec{Label: "Phone"},
		form.Spec{Label: "Address"},
		form.Spec{Label: "Role", Placeholder: client.RoleClient + " | " + client.RoleDistributeur},
	)
	role := u.Role
	if role == "" {
		role = client.RoleClient
	}
	m.form.SetValue(fieldFullName, strings.TrimSpace(u.FirstName()+" "+u.LastName()))
	m.form.SetValue(fieldEmail, u.Email)
	m.form.SetValue(fieldPhone, u.Phone)
	m.form.SetValue(fieldAddress, u.Address)
	m.form.SetValue(fieldRole, role)
	return m.form.Focus(0)
}

// Close hides the popup. A response still in flight is ignored.
func (m *Model) Close() {
	m.gen++
	m.open = false
	m.saving = false
}

func (m Model) IsOpen() bool { return m.open }
func (m Model) Saving() bool { return m.saving }
func (m Model) Err() string { return m.err }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.gen != m.gen || !m.open {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			m.err = FailedMessage
			return m, eventlog.Emit(eventlog.KindErr, "update user %s: %v", msg.user.ID, msg.err)
		}
		m.Close()
		saved := msg.user
		return m, tea.Batch(
			func() tea.Msg { return SavedMsg{User: saved} },
			eventlog.Emit(eventlog.KindAPI, "updated user %s", saved.ID),
		)

	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		switch {
		case key.Matches(msg, closeKey):
			m.Close()
			return m, func() tea.Msg { return ClosedMsg{} }
		case key.Matches(msg, saveKey):
			return m.save()
		case key.Matches(msg, enterKey):
			if m.form.Focused() == m.form.Len()-1 {
				return m.save()
			}
			cmd := m.form.Next()
			return m, cmd
		}
	}

	if !m.open {
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m Model) save() (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	upd := client.UserUpdate{
		FullName: m.form.Value(fieldFullName),
		Email:    m.form.Value(fieldEmail),
		Phone:    m.form.Value(fieldPhone),
		Address:  m.form.Value(fieldAddress),
		Role:     m.form.Value(fieldRole),
	}
	updated := m.user
	updated.FullName = upd.FullName
	updated.Email = upd.Email
	updated.Phone = upd.Phone
	updated.Address = upd.Address
	updated.Role = upd.Role

	m.saving = true
	m.err = ""
	api, gen, id := m.api, m.gen, m.user.ID
	return m, func() tea.Msg {
		err := api.UpdateUser(context.Background(), id, upd)
		return doneMsg{gen: gen, user: updated, err: err}
	}
}

func (m Model) View() string {
	if !m.open {
		return ""
	}
	title := theme.StyleTitle.Render("Edit user")
	sub := theme.StyleDimmed.Render(m.user.AccountNumber)

	var status string
	switch {
	case m.saving:
		status = theme.StyleDimmed.Render("Saving...")
	case m.err != "":
		status = theme.StyleError.Render(m.err)
	}
	help := theme.StyleDimmed.Render("tab:next  enter/ctrl+s:save  esc:cancel")

	content := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", m.form.View(), "", status, help)
	return lipgloss.NewStyle().
		Width(56).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorAccent).
		Render(content)
}
