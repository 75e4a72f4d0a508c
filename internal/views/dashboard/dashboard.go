// Package dashboard provides a stats summary row and a table of the most
// recently created accounts.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
)

const recentCount = 5

// API is the backend surface the dashboard reads.
type API interface {
	ListUsers(ctx context.Context, page, limit int) ([]client.User, error)
	ListTransactions(ctx context.Context) ([]client.Transaction, error)
	Me(ctx context.Context) (*client.Admin, error)
}

type usersMsg struct {
	users []client.User
	err   error
}

type txMsg struct {
	txs []client.Transaction
	err error
}

// AdminMsg carries the signed-in admin; the root model also reads it for
// the status bar.
type AdminMsg struct {
	Admin *client.Admin
	Err   error
}

// Model holds the dashboard state.
type Model struct {
	api   API
	Width int

	users   []client.User
	txs     []client.Transaction
	admin   *client.Admin
	pending int
	errs    []string
}

func New(api API) Model {
	return Model{api: api}
}

// Load fetches users, transactions and the admin record concurrently.
func (m *Model) Load() tea.Cmd {
	m.pending = 3
	m.errs = nil
	api := m.api
	return tea.Batch(
		func() tea.Msg {
			users, err := api.ListUsers(context.Background(), 1, 100)
			return usersMsg{users: users, err: err}
		},
		func() tea.Msg {
			txs, err := api.ListTransactions(context.Background())
			return txMsg{txs: txs, err: err}
		},
		func() tea.Msg {
			a, err := api.Me(context.Background())
			return AdminMsg{Admin: a, Err: err}
		},
	)
}

func (m Model) Loading() bool { return m.pending > 0 }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usersMsg:
		m.pending--
		if msg.err != nil {
			return m.fail("users", msg.err)
		}
		m.SetUsers(msg.users)
	case txMsg:
		m.pending--
		if msg.err != nil {
			return m.fail("transactions", msg.err)
		}
		m.txs = msg.txs
	case AdminMsg:
		m.pending--
		if msg.Err != nil {
			return m.fail("admin", msg.Err)
		}
		m.admin = msg.Admin
	}
	return m, nil
}

func (m Model) fail(what string, err error) (Model, tea.Cmd) {
	m.errs = append(m.errs, fmt.Sprintf("%s: %s", what, client.UserMessage(err)))
	return m, eventlog.Emit(eventlog.KindErr, "dashboard %s: %v", what, err)
}

// SetUsers replaces the user list, newest first.
func (m *Model) SetUsers(users []client.User) {
	m.users = append([]client.User(nil), users...)
	sort.SliceStable(m.users, func(i, j int) bool {
		return m.users[i].CreatedAt > m.users[j].CreatedAt
	})
}

// View renders the full dashboard: stats row + recent accounts.
func (m Model) View() string {
	width := max(m.Width, 40)

	sections := []string{
		m.renderStatsRow(width),
		m.renderRecent(width),
	}
	switch {
	case m.Loading():
		sections = append(sections, theme.StyleDimmed.Render("  Loading..."))
	case len(m.errs) > 0:
		sections = append(sections, theme.StyleError.Render("  Unable to load "+strings.Join(m.errs, "; ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatsRow(width int) string {
	var active, inactive, clients, distributeurs int
	for _, u := range m.users {
		if u.Blocked {
			inactive++
		} else {
			active++
		}
		if u.Role == client.RoleDistributeur {
			distributeurs++
		} else {
			clients++
		}
	}
	var cancelled int
	for _, t := range m.txs {
		if t.Cancelled() {
			cancelled++
		}
	}

	statStyle := lipgloss.NewStyle().Padding(0, 1)

	stats := []string{
		statStyle.Foreground(theme.ColorBright).Render(
			fmt.Sprintf("Users: %d", len(m.users))),
		statStyle.Foreground(theme.ColorHealthy).Render(
			fmt.Sprintf("Active: %d", active)),
		statStyle.Foreground(theme.ColorDanger).Render(
			fmt.Sprintf("Inactive: %d", inactive)),
		statStyle.Foreground(theme.ColorPrimary).Render(
			fmt.Sprintf("Clients: %d", clients)),
		statStyle.Foreground(theme.ColorAccent).Render(
			fmt.Sprintf("Distributors: %d", distributeurs)),
		statStyle.Foreground(theme.ColorBright).Render(
			fmt.Sprintf("Transactions: %d", len(m.txs))),
		statStyle.Foreground(theme.ColorWarning).Render(
			fmt.Sprintf("Cancelled: %d", cancelled)),
	}
	if m.admin != nil {
		stats = append(stats, statStyle.Foreground(theme.ColorHealthy).Render(
			"Balance: "+theme.Amount(m.admin.Balance)))
	}

	content := strings.Join(stats, lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | "))

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) renderRecent(width int) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).
		Render("  Recent accounts")

	if len(m.users) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No accounts"),
		)
	}

	colName := 26
	colEmail := 28
	colAccount := 14
	colDate := 10
	colStatus := 8

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)

	tableHeader := fmt.Sprintf("  %-*s %-*s %-*s %-*s %-*s %s",
		colName, "Name",
		colEmail, "Email",
		colAccount, "Account",
		colDate, "Created",
		colStatus, "Status",
		"Role",
	)
	lines := []string{
		header,
		dimStyle.Render(tableHeader),
		dimStyle.Render("  " + strings.Repeat("─", min(width-4, colName+colEmail+colAccount+colDate+colStatus+10))),
	}

	for _, u := range m.users[:min(recentCount, len(m.users))] {
		name := u.FullName
		if len(name) > colName-1 {
			name = name[:colName-2] + "…"
		}
		nameStr := lipgloss.NewStyle().Foreground(theme.ColorBright).Width(colName).Render(name)
		emailStr := dimStyle.Width(colEmail).Render(u.Email)
		accStr := dimStyle.Width(colAccount).Render(u.AccountNumber)
		dateStr := dimStyle.Width(colDate).Render(u.Date())
		statusStr := lipgloss.NewStyle().Foreground(theme.StatusColor(u.Status())).
			Width(colStatus).Render(u.Status())

		lines = append(lines, fmt.Sprintf("  %s %s %s %s %s %s",
			nameStr, emailStr, accStr, dateStr, statusStr, theme.RoleBadge(u.Role)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
