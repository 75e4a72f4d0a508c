package watchdog

import tea "github.com/charmbracelet/bubbletea"

// ExpiredMsg is delivered to the Bubble Tea program when the idle
// countdown runs out.
type ExpiredMsg struct{}

// SignalFor maps a terminal input message to an activity signal. Messages
// that are not user input report false.
func SignalFor(msg tea.Msg) (Signal, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return KeyPress, true
	case tea.MouseMsg:
		ev := tea.MouseEvent(msg)
		switch {
		case ev.IsWheel():
			return Scroll, true
		case ev.Action == tea.MouseActionMotion:
			return PointerMove, true
		default:
			return Click, true
		}
	}
	return 0, false
}

// Sender is the part of *tea.Program the watchdog needs.
type Sender interface {
	Send(msg tea.Msg)
}

// NotifyProgram returns an onExpire callback that posts ExpiredMsg into p,
// keeping all state changes on the program's update loop.
func NotifyProgram(p Sender) func() {
	return func() { p.Send(ExpiredMsg{}) }
}
