// Package txtable renders transaction rows for the history and cancel
// views.
package txtable

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/listing"
	"github.com/digimonnaie/console/internal/theme"
)

const (
	colID     = 14
	colType   = 12
	colParty  = 18
	colAmount = 14
	colDate   = 16
	colStatus = 9
)

// Status renders Cancelled or Active.
func Status(t client.Transaction) string {
	if t.Cancelled() {
		return "Cancelled"
	}
	return "Active"
}

// Render draws one page of transactions. cursor < 0 hides the row marker.
func Render(p listing.Page[client.Transaction], cursor, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.ColorDimmed)

	head := fmt.Sprintf("  %-*s %-*s %-*s %-*s %*s %-*s %-*s",
		colID, "ID",
		colType, "Type",
		colParty, "From",
		colParty, "To",
		colAmount, "Amount",
		colDate, "Date",
		colStatus, "Status",
	)
	total := colID + colType + 2*colParty + colAmount + colDate + colStatus + 6
	lines := []string{
		dim.Render(head),
		dim.Render("  " + strings.Repeat("─", min(width-4, total))),
	}
	if len(p.Items) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No transactions"))
	}

	for i, t := range p.Items {
		prefix := "  "
		text := lipgloss.NewStyle().Foreground(theme.ColorBright)
		if i == cursor {
			prefix = theme.StyleSelected.Render("> ")
			text = text.Bold(true)
		}
		date := ""
		if !t.CreatedAt.IsZero() {
			date = t.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		status := lipgloss.NewStyle().Foreground(theme.StatusColor(Status(t))).
			Width(colStatus).Render(Status(t))

		lines = append(lines, prefix+
			text.Width(colID).Render(cut(t.TransactionID, colID))+" "+
			text.Width(colType).Render(cut(theme.TypeGlyph(t.Type)+" "+t.Type, colType))+" "+
			text.Width(colParty).Render(cut(t.SenderName(), colParty))+" "+
			text.Width(colParty).Render(cut(t.RecipientName(), colParty))+" "+
			text.Width(colAmount).Align(lipgloss.Right).Render(theme.Amount(t.Amount))+" "+
			dim.Width(colDate).Render(date)+" "+
			status)
	}

	lines = append(lines, "", dim.Render(fmt.Sprintf("  Page %d/%d · %d transactions", p.Number, p.Count, p.Total)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
