// Package deposit is the cash-deposit form: credit a customer account
// from the admin's float.
package deposit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/form"
)

// Local validation messages.
const (
	MsgInvalidFields = "Please fill in all fields correctly!"
	msgInsufficient  = "Insufficient admin balance! Current balance: %s CFA"
)

const (
	fieldAccount = iota
	fieldAmount
)

// API is the backend surface the form needs.
type API interface {
	Me(ctx context.Context) (*client.Admin, error)
	Deposit(ctx context.Context, accountNumber string, amount float64) (string, error)
}

type balanceMsg struct {
	admin *client.Admin
	err   error
}

type doneMsg struct {
	account string
	amount  float64
	message string
	err     error
}

var submitKey = key.NewBinding(key.WithKeys("enter"))

// Model is the deposit form.
type Model struct {
	api     API
	form    form.Form
	balance float64
	loading bool
	notice  string
	isErr   bool
	Width   int
}

func New(api API) Model {
	return Model{
		api: api,
		form: form.New(
			form.Spec{Label: "Account number", Placeholder: "DM-000123"},
			form.Spec{Label: "Amount (CFA)", Placeholder: "5000", CharLimit: 15},
		),
	}
}

// Load fetches the admin balance.
func (m *Model) Load() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		a, err := api.Me(context.Background())
		return balanceMsg{admin: a, err: err}
	}
}

func (m Model) Balance() float64 { return m.balance }
func (m Model) Notice() string { return m.notice }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceMsg:
		if msg.err != nil {
			return m, eventlog.Emit(eventlog.KindErr, "fetch admin balance: %v", msg.err)
		}
		if msg.admin != nil {
			m.balance = msg.admin.Balance
		}
		return m, nil

	case doneMsg:
		m.loading = false
		if msg.err != nil {
			m.setNotice(client.UserMessage(msg.err), true)
			return m, eventlog.Emit(eventlog.KindErr, "deposit to %s: %v", msg.account, msg.err)
		}
		m.setNotice(msg.message+"\nAmount deposited: "+formatPlain(msg.amount)+" CFA", false)
		m.form.Reset()
		m.balance -= msg.amount
		return m, eventlog.Emit(eventlog.KindAPI, "deposited %s to %s", formatPlain(msg.amount), msg.account)

	case tea.KeyMsg:
		if key.Matches(msg, submitKey) {
			if m.form.Focused() == fieldAccount {
				cmd := m.form.Next()
				return m, cmd
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	var changed int
	m.form, cmd, changed = m.form.Update(msg)
	if changed >= 0 {
		m.notice = ""
	}
	return m, cmd
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice = s
	m.isErr = isErr
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	account := m.form.Value(fieldAccount)
	amount, err := strconv.ParseFloat(m.form.Value(fieldAmount), 64)
	if account == "" || err != nil || !(amount > 0) {
		m.setNotice(MsgInvalidFields, true)
		return m, nil
	}
	if amount > m.balance {
		m.setNotice(insufficient(m.balance), true)
		return m, nil
	}

	m.loading = true
	m.notice = ""
	api := m.api
	return m, func() tea.Msg {
		message, err := api.Deposit(context.Background(), account, amount)
		return doneMsg{account: account, amount: amount, message: message, err: err}
	}
}

func insufficient(balance float64) string {
	return fmt.Sprintf(msgInsufficient, formatPlain(balance))
}

func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m Model) View() string {
	title := theme.StyleTitle.Render("Cash deposit")
	bal := theme.StyleDimmed.Render("Admin balance: ") +
		lipgloss.NewStyle().Foreground(theme.ColorHealthy).Bold(true).Render(theme.Amount(m.balance))

	var status string
	switch {
	case m.loading:
		status = theme.StyleDimmed.Render("Depositing...")
	case m.notice != "" && m.isErr:
		status = theme.StyleError.Render(m.notice)
	case m.notice != "":
		status = theme.StyleSuccess.Render(m.notice)
	}

	help := theme.StyleDimmed.Render("tab:next field  enter:deposit")
	content := lipgloss.JoinVertical(lipgloss.Left, title, bal, "", m.form.View(), "", status, help)

	return lipgloss.NewStyle().
		Width(56).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
