// Package wizard renders the three-step create-user dialog on top of the
// internal/wizard state machine.
package wizard

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/form"
	wz "github.com/digimonnaie/console/internal/wizard"
)

// API is the backend surface the dialog needs.
type API interface {
	CreateUser(ctx context.Context, u client.NewUser) (*client.User, error)
}

// DoneMsg carries the create response. It is exported so a parent can
// route it here even after the dialog was closed; stale generations are
// dropped by the state machine.
type DoneMsg struct {
	Gen  uint64
	User *client.User
	Err  error
}

// CreatedMsg hands the new record to the parent list.
type CreatedMsg struct {
	User client.User
}

// ClosedMsg reports that the dialog was dismissed.
type ClosedMsg struct{}

var (
	enterKey = key.NewBinding(key.WithKeys("enter"))
	backKey  = key.NewBinding(key.WithKeys("ctrl+b"))
	closeKey = key.NewBinding(key.WithKeys("esc"))
)

var placeholders = map[wz.Field]string{
	wz.FieldBirthDate:  "YYYY-MM-DD",
	wz.FieldAttachment: "path to a scan (optional)",
	wz.FieldRole:       "space to switch",
	wz.FieldPhone:      "771234567",
}

// Model is the dialog. It owns its state machine exclusively.
type Model struct {
	api     API
	wiz     *wz.Wizard
	forms   [wz.StepCount]form.Form
	open    bool
	success string
}

func New(api API, opts ...wz.Option) Model {
	m := Model{api: api, wiz: wz.New(opts...)}
	m.rebuild()
	return m
}

// Open shows the dialog on a fresh form.
func (m *Model) Open() tea.Cmd {
	m.wiz.Reset()
	m.rebuild()
	m.open = true
	m.success = ""
	return m.forms[wz.StepIdentity].Focus(0)
}

// Close hides the dialog and discards all input. A submission still in
// flight will be ignored when it completes.
func (m *Model) Close() {
	m.wiz.Reset()
	m.rebuild()
	m.open = false
	m.success = ""
}

func (m Model) IsOpen() bool { return m.open }
func (m Model) Wizard() *wz.Wizard { return m.wiz }
func (m Model) Success() string { return m.success }

// rebuild recreates the step forms from the state machine's values.
func (m *Model) rebuild() {
	for s := wz.StepIdentity; s < wz.StepCount; s++ {
		fields := wz.Fields[s]
		specs := make([]form.Spec, len(fields))
		for i, f := range fields {
			specs[i] = form.Spec{
				Label:       f.String(),
				Placeholder: placeholders[f],
				Password:    f == wz.FieldPassword,
			}
		}
		fm := form.New(specs...)
		for i, f := range fields {
			fm.SetValue(i, m.wiz.Value(f))
		}
		if s != m.wiz.Step() {
			fm.Blur()
		}
		m.forms[s] = fm
	}
	m.syncErrors()
}

func (m *Model) syncErrors() {
	for s := wz.StepIdentity; s < wz.StepCount; s++ {
		for i, f := range wz.Fields[s] {
			m.forms[s].SetError(i, m.wiz.Error(f))
		}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DoneMsg:
		out, ok := m.wiz.Complete(msg.Gen, msg.User, msg.Err)
		if !ok {
			return m, nil
		}
		if out.Failed {
			return m, eventlog.Emit(eventlog.KindErr, "create user: %v", msg.Err)
		}
		m.success = out.Message
		m.rebuild()
		cmds := []tea.Cmd{m.forms[wz.StepIdentity].Focus(0)}
		if out.Created != nil {
			created := *out.Created
			cmds = append(cmds,
				func() tea.Msg { return CreatedMsg{User: created} },
				eventlog.Emit(eventlog.KindAPI, "created %s %s", created.Role, created.ID),
			)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		switch {
		case key.Matches(msg, closeKey):
			m.Close()
			return m, func() tea.Msg { return ClosedMsg{} }
		case key.Matches(msg, backKey):
			return m.move(m.wiz.Back())
		case key.Matches(msg, enterKey):
			step := m.wiz.Step()
			if m.forms[step].Focused() < m.forms[step].Len()-1 {
				cmd := m.forms[step].Next()
				return m, cmd
			}
			if step == wz.StepAccount {
				return m.submit()
			}
			return m.move(m.wiz.Next())
		}
	}

	if !m.open {
		return m, nil
	}
	step := m.wiz.Step()
	if k, ok := msg.(tea.KeyMsg); ok && m.roleFocused() {
		switch k.Type {
		case tea.KeySpace, tea.KeyLeft, tea.KeyRight:
			m.wiz.ToggleRole()
			m.forms[step].SetValue(m.forms[step].Focused(), m.wiz.Value(wz.FieldRole))
			m.success = ""
			m.syncErrors()
			return m, nil
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		default:
			// The role is a choice, not free text.
			return m, nil
		}
	}
	var cmd tea.Cmd
	var changed int
	m.forms[step], cmd, changed = m.forms[step].Update(msg)
	if changed >= 0 {
		m.wiz.Set(wz.Fields[step][changed], m.forms[step].Raw(changed))
		m.success = ""
		m.syncErrors()
	}
	return m, cmd
}

func (m Model) roleFocused() bool {
	step := m.wiz.Step()
	i := m.forms[step].Focused()
	fields := wz.Fields[step]
	return i >= 0 && i < len(fields) && fields[i] == wz.FieldRole
}

// move applies the result of a Next or Back and moves focus to the new
// step.
func (m Model) move(err error) (Model, tea.Cmd) {
	m.syncErrors()
	if err != nil {
		return m, nil
	}
	m.success = ""
	for s := range m.forms {
		m.forms[s].Blur()
	}
	cmd := m.forms[m.wiz.Step()].Focus(0)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	sub, err := m.wiz.BeginSubmit()
	m.syncErrors()
	if err != nil {
		if errors.Is(err, wz.ErrSubmitting) {
			return m, nil
		}
		return m, eventlog.Emit(eventlog.KindErr, "create user refused: %v", err)
	}
	m.success = ""
	api := m.api
	return m, func() tea.Msg {
		u, err := api.CreateUser(context.Background(), sub.Payload)
		return DoneMsg{Gen: sub.Gen, User: u, Err: err}
	}
}

func (m Model) View() string {
	if !m.open {
		return ""
	}
	step := m.wiz.Step()

	title := theme.StyleTitle.Render("Create account")
	stepper := m.renderStepper()

	var banner string
	switch {
	case m.wiz.Submitting():
		banner = theme.StyleDimmed.Render("Creating...")
	case m.success != "":
		banner = theme.StyleSuccess.Render("✓ " + m.success)
	case m.wiz.Message() != "":
		banner = theme.StyleError.Render("✗ " + m.wiz.Message())
	}

	content := []string{title, stepper, ""}
	if banner != "" {
		content = append(content, banner, "")
	}
	content = append(content, m.forms[step].View(), "", m.renderActions())

	return lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorPrimary).
		Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

func (m Model) renderStepper() string {
	parts := make([]string, 0, wz.StepCount)
	for s := wz.StepIdentity; s < wz.StepCount; s++ {
		switch {
		case s == m.wiz.Step():
			parts = append(parts, theme.StyleSelected.Render("● "+s.String()))
		case s < m.wiz.Step():
			parts = append(parts, theme.StyleSuccess.Render("✓ "+s.String()))
		default:
			parts = append(parts, theme.StyleDimmed.Render("○ "+s.String()))
		}
	}
	return strings.Join(parts, theme.StyleDimmed.Render(" ─ "))
}

func (m Model) renderActions() string {
	enabled := lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true)
	disabled := theme.StyleDimmed

	var actions []string
	if m.wiz.Step() > wz.StepIdentity {
		style := enabled
		if m.wiz.Submitting() {
			style = disabled
		}
		actions = append(actions, style.Render("[ctrl+b Back]"))
	}
	if m.wiz.Step() < wz.StepAccount {
		style := enabled
		if !m.wiz.CanNext() {
			style = disabled
		}
		actions = append(actions, style.Render("[enter Next]"))
	} else {
		style := enabled
		if !m.wiz.CanSubmit() {
			style = disabled
		}
		actions = append(actions, style.Render("[enter Create]"))
	}
	actions = append(actions, disabled.Render("esc:close"))
	return strings.Join(actions, "  ")
}
