package users

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/theme"
)

// Column widths.
const (
	colSel     = 3
	colFirst   = 12
	colLast    = 14
	colEmail   = 24
	colPhone   = 13
	colAccount = 14
	colDate    = 10
	colStatus  = 8
	colRole    = 3
)

func (m Model) View() string {
	if m.edit.IsOpen() {
		return m.edit.View()
	}
	if m.create.IsOpen() {
		return m.create.View()
	}

	width := max(m.Width, 40)
	header := theme.StyleTitle.Render("Users")

	search := theme.StyleDimmed.Render("/ to search")
	if m.searching || m.page.Term != "" {
		search = m.search.View()
	}

	sections := []string{header, search, m.renderTable(width)}

	switch {
	case m.confirm == confirmDeleteOne:
		sections = append(sections, theme.StyleError.Render("Delete this user? (y/N)"))
	case m.confirm == confirmDeleteSelected:
		sections = append(sections, theme.StyleError.Render(
			fmt.Sprintf("Delete the %d selected users? (y/N)", len(m.selectedIDs()))))
	case m.loading:
		sections = append(sections, theme.StyleDimmed.Render("Loading users..."))
	case m.notice != "" && m.isErr:
		sections = append(sections, theme.StyleError.Render(m.notice))
	case m.notice != "":
		sections = append(sections, theme.StyleSuccess.Render(m.notice))
	}

	sections = append(sections, theme.StyleDimmed.Render(
		"  j/k:row  ←/→:page  space:select  a:page  n:new  e:edit  b/B:block  x/X:delete  r:reload"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTable(width int) string {
	p := m.current()
	dim := lipgloss.NewStyle().Foreground(theme.ColorDimmed)

	head := fmt.Sprintf("  %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s",
		colSel, "",
		colFirst, "First name",
		colLast, "Last name",
		colEmail, "Email",
		colPhone, "Phone",
		colAccount, "Account",
		colDate, "Created",
		colStatus, "Status",
		colRole, "",
	)
	total := colSel + colFirst + colLast + colEmail + colPhone + colAccount + colDate + colStatus + colRole + 8
	lines := []string{
		dim.Render(head),
		dim.Render("  " + strings.Repeat("─", min(width-4, total))),
	}

	if len(p.Items) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No users"))
	}

	for i, u := range p.Items {
		lines = append(lines, m.renderRow(i == m.cursor, u))
	}

	footer := fmt.Sprintf("  Page %d/%d · %d users", p.Number, p.Count, p.Total)
	if n := len(m.selected); n > 0 {
		footer += fmt.Sprintf(" · %d selected", n)
	}
	lines = append(lines, "", dim.Render(footer))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderRow(active bool, u client.User) string {
	prefix := "  "
	if active {
		prefix = theme.StyleSelected.Render("> ")
	}
	sel := "[ ]"
	if m.selected[u.ID] {
		sel = "[x]"
	}
	status := lipgloss.NewStyle().Foreground(theme.StatusColor(u.Status())).
		Width(colStatus).Render(u.Status())

	text := lipgloss.NewStyle().Foreground(theme.ColorBright)
	if active {
		text = text.Bold(true)
	}
	return prefix + fmt.Sprintf("%-*s ", colSel, sel) +
		text.Width(colFirst).Render(truncate(u.FirstName(), colFirst)) + " " +
		text.Width(colLast).Render(truncate(u.LastName(), colLast)) + " " +
		text.Width(colEmail).Render(truncate(u.Email, colEmail)) + " " +
		text.Width(colPhone).Render(truncate(u.Phone, colPhone)) + " " +
		text.Width(colAccount).Render(truncate(u.AccountNumber, colAccount)) + " " +
		text.Width(colDate).Render(u.Date()) + " " +
		status + " " + theme.RoleBadge(u.Role)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
