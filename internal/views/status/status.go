// Package status renders the top bar: signed-in admin, balance, current
// section, theme and the idle countdown.
package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/theme"
)

// warnBelow is when the idle countdown turns to a warning color.
const warnBelow = 30 * time.Second

// Model holds the status bar state.
type Model struct {
	Admin     string
	Balance   float64
	HasAdmin  bool
	Section   string
	Theme     theme.Mode
	Remaining time.Duration
	Width     int
}

func New() Model {
	return Model{Theme: theme.ModeSystem}
}

// View renders the status bar.
func (m Model) View() string {
	width := max(m.Width, 40)

	brand := theme.StyleTitle.Render("DigiMonnaie")

	who := theme.StyleDimmed.Render("…")
	if m.HasAdmin {
		who = lipgloss.NewStyle().Foreground(theme.ColorBright).Render(m.Admin) +
			theme.StyleDimmed.Render("  ") +
			lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render(theme.Amount(m.Balance))
	}

	section := lipgloss.NewStyle().Foreground(theme.ColorAccent).Render(m.Section)
	mode := theme.StyleDimmed.Render("theme:" + string(m.Theme))

	idleColor := theme.ColorDimmed
	if m.Remaining > 0 && m.Remaining < warnBelow {
		idleColor = theme.ColorWarning
	}
	idle := lipgloss.NewStyle().Foreground(idleColor).Render("idle " + formatRemaining(m.Remaining))

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := brand + sep + who + sep + section + sep + mode + sep + idle

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

// formatRemaining renders m:ss, rounding up so 0:00 is only shown at
// expiry.
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
