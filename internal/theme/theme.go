// Package theme provides the Lip Gloss color palette and reusable styles
// for the console. It is a leaf package with no internal imports to avoid
// import cycles.
//
// Colors and styles are package variables rebuilt by Apply, so every view
// picks up a theme switch on its next render.
package theme

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode is the persisted theme preference.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// ParseMode maps a stored preference to a Mode. Unknown values mean
// ModeSystem.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLight:
		return ModeLight
	case ModeDark:
		return ModeDark
	default:
		return ModeSystem
	}
}

// Next cycles light, dark, system.
func (m Mode) Next() Mode {
	switch m {
	case ModeLight:
		return ModeDark
	case ModeDark:
		return ModeSystem
	default:
		return ModeLight
	}
}

// hasDarkBackground is swapped in tests.
var hasDarkBackground = lipgloss.HasDarkBackground

// Dark reports whether m renders with the dark palette. ModeSystem asks
// the terminal.
func (m Mode) Dark() bool {
	switch m {
	case ModeLight:
		return false
	case ModeDark:
		return true
	default:
		return hasDarkBackground()
	}
}

// Palette is one complete set of colors.
type Palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Dimmed  lipgloss.Color
	Bright  lipgloss.Color
	Bg      lipgloss.Color
	Healthy lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
}

var (
	DarkPalette = Palette{
		Primary: lipgloss.Color("#60a5fa"),
		Accent:  lipgloss.Color("#a855f7"),
		Border:  lipgloss.Color("#4b5563"),
		Dimmed:  lipgloss.Color("#9ca3af"),
		Bright:  lipgloss.Color("#f9fafb"),
		Bg:      lipgloss.Color("#111827"),
		Healthy: lipgloss.Color("#22c55e"),
		Warning: lipgloss.Color("#d97706"),
		Danger:  lipgloss.Color("#dc2626"),
	}
	LightPalette = Palette{
		Primary: lipgloss.Color("#1d4ed8"),
		Accent:  lipgloss.Color("#7c3aed"),
		Border:  lipgloss.Color("#9ca3af"),
		Dimmed:  lipgloss.Color("#6b7280"),
		Bright:  lipgloss.Color("#111827"),
		Bg:      lipgloss.Color("#f9fafb"),
		Healthy: lipgloss.Color("#15803d"),
		Warning: lipgloss.Color("#b45309"),
		Danger:  lipgloss.Color("#b91c1c"),
	}
)

// UI chrome colors.
var (
	ColorPrimary lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorBorder  lipgloss.Color
	ColorDimmed  lipgloss.Color
	ColorBright  lipgloss.Color
	ColorBg      lipgloss.Color
	ColorHealthy lipgloss.Color
	ColorWarning lipgloss.Color
	ColorDanger  lipgloss.Color
)

// Reusable styles.
var (
	StyleBorder   lipgloss.Style
	StyleHeader   lipgloss.Style
	StyleDimmed   lipgloss.Style
	StyleSelected lipgloss.Style
	StyleError    lipgloss.Style
	StyleSuccess  lipgloss.Style
	StyleTitle    lipgloss.Style
)

var current = ModeDark

func init() {
	use(DarkPalette)
}

// Apply switches the palette to match m.
func Apply(m Mode) {
	current = m
	if m.Dark() {
		use(DarkPalette)
		return
	}
	use(LightPalette)
}

// Current returns the mode last passed to Apply.
func Current() Mode { return current }

func use(p Palette) {
	ColorPrimary = p.Primary
	ColorAccent = p.Accent
	ColorBorder = p.Border
	ColorDimmed = p.Dimmed
	ColorBright = p.Bright
	ColorBg = p.Bg
	ColorHealthy = p.Healthy
	ColorWarning = p.Warning
	ColorDanger = p.Danger

	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorDanger)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorHealthy)

	StyleTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)
}

// StatusColor returns the color for an account or transaction status
// label.
func StatusColor(status string) lipgloss.Color {
	switch strings.ToLower(status) {
	case "active":
		return ColorHealthy
	case "inactive", "cancelled":
		return ColorDanger
	default:
		return ColorDimmed
	}
}

// RoleBadge returns a colored badge for a user role.
func RoleBadge(role string) string {
	switch role {
	case "client":
		return lipgloss.NewStyle().Foreground(ColorPrimary).Render("[C]")
	case "distributeur":
		return lipgloss.NewStyle().Foreground(ColorAccent).Render("[D]")
	default:
		return lipgloss.NewStyle().Foreground(ColorDimmed).Render("[?]")
	}
}

// TypeGlyph returns a glyph for a transaction type.
func TypeGlyph(kind string) string {
	switch strings.ToLower(kind) {
	case "depot", "deposit":
		return "↓"
	case "retrait", "withdrawal":
		return "↑"
	case "transfert", "transfer":
		return "⇄"
	default:
		return "·"
	}
}

// Amount formats a CFA amount with space separated thousands, for example
// "12 500 CFA".
func Amount(v float64) string {
	neg := v < 0
	n := int64(math.Round(math.Abs(v)))
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " CFA"
	if neg {
		return "-" + out
	}
	return out
}
