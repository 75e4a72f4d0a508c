// Package profile shows and edits the signed-in admin's own record.
package profile

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/form"
)

// Messages shown after load or save.
const (
	MsgUpdated    = "Profile updated!"
	MsgLoadFailed = "Unable to load profile"
	MsgSaveFailed = "Unable to update profile"
)

const (
	fieldPrenom = iota
	fieldNom
	fieldTelephone
	fieldAdresse
	fieldPhoto
)

// API is the backend surface the view needs.
type API interface {
	Admin(ctx context.Context, id string) (*client.Admin, error)
	UpdateAdmin(ctx context.Context, id string, upd client.AdminUpdate) (*client.Admin, error)
}

type loadedMsg struct {
	admin *client.Admin
	err   error
}

type savedMsg struct {
	admin *client.Admin
	err   error
}

// UpdatedMsg tells the root model the admin record changed.
type UpdatedMsg struct {
	Admin client.Admin
}

var (
	saveKey  = key.NewBinding(key.WithKeys("ctrl+s"))
	enterKey = key.NewBinding(key.WithKeys("enter"))
)

// Model is the profile editor.
type Model struct {
	api     API
	userID  string
	admin   client.Admin
	form    form.Form
	loading bool
	saving  bool
	notice  string
	isErr   bool
}

func New(api API) Model {
	return Model{api: api, form: newForm()}
}

func newForm() form.Form {
	return form.New(
		form.Spec{Label: "First name"},
		form.Spec{Label: "Last name"},
		form.Spec{Label: "Phone"},
		form.Spec{Label: "Address"},
		form.Spec{Label: "Photo", Placeholder: "path to an image (optional)"},
	)
}

// Load fetches the admin record for userID.
func (m *Model) Load(userID string) tea.Cmd {
	m.userID = userID
	m.loading = true
	m.notice = ""
	api := m.api
	return func() tea.Msg {
		a, err := api.Admin(context.Background(), userID)
		return loadedMsg{admin: a, err: err}
	}
}

func (m Model) Notice() string { return m.notice }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setNotice(MsgLoadFailed, true)
			return m, eventlog.Emit(eventlog.KindErr, "load profile %s: %v", m.userID, msg.err)
		}
		m.fill(*msg.admin)
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.setNotice(MsgSaveFailed, true)
			return m, eventlog.Emit(eventlog.KindErr, "update profile: %v", msg.err)
		}
		m.setNotice(MsgUpdated, false)
		admin := *msg.admin
		if admin.Email == "" {
			admin.Email = m.admin.Email
		}
		if admin.Balance == 0 {
			admin.Balance = m.admin.Balance
		}
		m.fill(admin)
		return m, tea.Batch(
			func() tea.Msg { return UpdatedMsg{Admin: admin} },
			eventlog.Emit(eventlog.KindAPI, "profile updated"),
		)

	case tea.KeyMsg:
		switch {
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

	var cmd tea.Cmd
	m.form, cmd, _ = m.form.Update(msg)
	return m, cmd
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice = s
	m.isErr = isErr
}

func (m *Model) fill(a client.Admin) {
	m.admin = a
	m.form = newForm()
	m.form.SetValue(fieldPrenom, a.Prenom)
	m.form.SetValue(fieldNom, a.Nom)
	m.form.SetValue(fieldTelephone, a.Telephone)
	m.form.SetValue(fieldAdresse, a.Adresse)
}

func (m Model) save() (Model, tea.Cmd) {
	if m.saving || m.loading || m.userID == "" {
		return m, nil
	}
	upd := client.AdminUpdate{
		Prenom:    m.form.Value(fieldPrenom),
		Nom:       m.form.Value(fieldNom),
		Telephone: m.form.Value(fieldTelephone),
		Adresse:   m.form.Value(fieldAdresse),
	}
	if p := m.form.Value(fieldPhoto); p != "" {
		upd.Photo = &client.Attachment{Name: filepath.Base(p), Path: p}
	}
	m.saving = true
	m.notice = ""
	api, id := m.api, m.userID
	return m, func() tea.Msg {
		a, err := api.UpdateAdmin(context.Background(), id, upd)
		return savedMsg{admin: a, err: err}
	}
}

func (m Model) View() string {
	title := theme.StyleTitle.Render("My profile")
	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, title, theme.StyleDimmed.Render("Loading profile..."))
	}

	info := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleHeader.Render(m.admin.DisplayName()),
		theme.StyleDimmed.Render(m.admin.Email),
		lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("Balance: "+theme.Amount(m.admin.Balance)),
	)
	if m.admin.Photo != "" {
		info = lipgloss.JoinVertical(lipgloss.Left, info, theme.StyleDimmed.Render("photo: "+m.admin.Photo))
	}

	var status string
	switch {
	case m.saving:
		status = theme.StyleDimmed.Render("Saving...")
	case m.notice != "" && m.isErr:
		status = theme.StyleError.Render(m.notice)
	case m.notice != "":
		status = theme.StyleSuccess.Render(m.notice)
	}

	help := theme.StyleDimmed.Render("tab:next  enter/ctrl+s:save")
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", info, "", m.form.View(), "", status, help)
	return lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
