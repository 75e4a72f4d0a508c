// Package eventlog provides a scrollable overlay of recent console events:
// API calls, authentication changes, navigation and errors.
package eventlog

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/theme"
)

const maxEntries = 200

// Event kinds.
const (
	KindAPI  = "api"
	KindAuth = "auth"
	KindNav  = "nav"
	KindErr  = "err"
	KindIdle = "idle"
)

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// EventMsg asks the root model to record an event.
type EventMsg struct {
	Kind    string
	Message string
}

// Emit returns a command that records an event.
func Emit(kind, format string, args ...any) tea.Cmd {
	msg := EventMsg{Kind: kind, Message: fmt.Sprintf(format, args...)}
	return func() tea.Msg { return msg }
}

// filterOrder is the cycle used by CycleFilter; "" shows every kind.
var filterOrder = []string{"", KindErr, KindAuth, KindAPI, KindNav, KindIdle}

// Model holds event log state.
type Model struct {
	Entries []Entry
	Offset  int    // scroll offset from the bottom
	Only    string // kind filter, empty for all
	now     func() time.Time
}

func New() Model {
	return Model{now: time.Now}
}

// Add appends an entry and caps the buffer.
func (m *Model) Add(kind, message string) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	m.Entries = append(m.Entries, Entry{
		Time:    now(),
		Kind:    kind,
		Message: message,
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.Offset = 0
}

// ScrollUp moves the viewport up.
func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(len(m.visible())-1, 0))
}

// ScrollDown moves the viewport down.
func (m *Model) ScrollDown(n int) {
	m.Offset = max(m.Offset-n, 0)
}

// CycleFilter switches to the next kind filter and returns to the bottom.
func (m *Model) CycleFilter() {
	for i, k := range filterOrder {
		if k == m.Only {
			m.Only = filterOrder[(i+1)%len(filterOrder)]
			break
		}
	}
	m.Offset = 0
}

func (m Model) visible() []Entry {
	if m.Only == "" {
		return m.Entries
	}
	var out []Entry
	for _, e := range m.Entries {
		if e.Kind == m.Only {
			out = append(out, e)
		}
	}
	return out
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := max(width-4, 20)
	visibleLines := max(height-6, 3)

	title := theme.StyleHeader.Render(" EVENT LOG ")
	if m.Only != "" {
		title += theme.StyleDimmed.Render(" only:" + m.Only)
	}
	entries := m.visible()
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  f:filter  esc:close  %d/%d entries", len(entries), len(m.Entries)))

	if len(entries) == 0 {
		body := theme.StyleDimmed.Render("  No events recorded yet.")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help)
		return panelStyle(innerW).Render(content)
	}

	end := max(len(entries)-m.Offset, 0)
	start := max(end-visibleLines, 0)

	var lines []string
	for _, e := range entries[start:end] {
		ts := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(5).Render(e.Kind)
		msg := e.Message
		if innerW > 24 && len(msg) > innerW-21 {
			msg = msg[:innerW-24] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", ts, kind, msg))
	}

	more := ""
	if m.Offset > 0 {
		more = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), more, help)
	return panelStyle(innerW).Render(content)
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindAPI:
		return theme.ColorPrimary
	case KindErr:
		return theme.ColorDanger
	case KindNav:
		return theme.ColorAccent
	case KindAuth, KindIdle:
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}
