package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/config"
	"github.com/digimonnaie/console/internal/logging"
	"github.com/digimonnaie/console/internal/session"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/cancel"
	"github.com/digimonnaie/console/internal/views/dashboard"
	"github.com/digimonnaie/console/internal/views/deposit"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/help"
	"github.com/digimonnaie/console/internal/views/history"
	"github.com/digimonnaie/console/internal/views/login"
	"github.com/digimonnaie/console/internal/views/profile"
	"github.com/digimonnaie/console/internal/views/status"
	"github.com/digimonnaie/console/internal/views/users"
	"github.com/digimonnaie/console/internal/watchdog"
)

// ExpiredNotice is shown when the idle watchdog ends the session.
const ExpiredNotice = "You have been logged out due to inactivity."

// API is the whole backend surface the console uses. *client.Client
// satisfies it.
type API interface {
	login.API
	dashboard.API
	users.API
	deposit.API
	history.API
	cancel.API
	profile.API
}

// Route identifies the section shown in the main area.
type Route int

const (
	RouteLogin Route = iota
	RouteDashboard
	RouteUsers
	RouteDeposit
	RouteHistory
	RouteCancel
	RouteProfile
)

type section struct {
	route Route
	title string
}

// sections lists the authenticated routes in drawer order.
var sections = [...]section{
	{RouteDashboard, "Dashboard"},
	{RouteUsers, "Users"},
	{RouteDeposit, "Deposit"},
	{RouteHistory, "History"},
	{RouteCancel, "Cancel"},
	{RouteProfile, "Profile"},
}

func (r Route) String() string {
	for _, s := range sections {
		if s.route == r {
			return s.title
		}
	}
	return "Login"
}

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayEventLog
	OverlayLogout
	OverlayExpired
)

type tickMsg struct{}

// revokedMsg reports that another process ended the session.
type revokedMsg struct {
	ch <-chan struct{}
}

// UnauthorizedMsg reports that the backend rejected the stored token.
type UnauthorizedMsg struct{}

// Option configures the root model.
type Option func(*Model)

// WithRowsPerPage sets the page size of the list sections.
func WithRowsPerPage(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	api    API
	store  *session.Manager
	wd     *watchdog.Watchdog
	ctx    context.Context
	cancel context.CancelFunc

	keys    KeyMap
	width   int
	height  int
	perPage int

	// Navigation.
	route     Route
	overlay   Overlay
	drawer    bool
	themeMode theme.Mode
	initCmd   tea.Cmd

	// Sub-views.
	statusBar status.Model
	events    eventlog.Model
	help      help.Model
	login     login.Model
	dashboard dashboard.Model
	users     users.Model
	deposit   deposit.Model
	history   history.Model
	cancelTx  cancel.Model
	profile   profile.Model
}

// New creates the root model. A stored session opens on the dashboard,
// otherwise on the login form.
func New(api API, store *session.Manager, wd *watchdog.Watchdog, opts ...Option) Model {
	ctx, stop := context.WithCancel(context.Background())
	m := Model{
		api:       api,
		store:     store,
		wd:        wd,
		ctx:       ctx,
		cancel:    stop,
		keys:      DefaultKeyMap(),
		perPage:   config.DefaultRowsPerPage,
		statusBar: status.New(),
		events:    eventlog.New(),
		themeMode: theme.ParseMode(store.ThemeMode()),
	}
	for _, opt := range opts {
		opt(&m)
	}
	theme.Apply(m.themeMode)
	m.statusBar.Theme = m.themeMode
	m.help = help.New(m.themeMode)
	m.resetViews()

	if store.Authenticated() {
		m.route = RouteDashboard
		m.statusBar.Section = m.route.String()
		m.initCmd = m.dashboard.Load()
	} else {
		m.statusBar.Section = RouteLogin.String()
	}
	return m
}

func (m *Model) resetViews() {
	m.login = login.New(m.api)
	m.dashboard = dashboard.New(m.api)
	m.users = users.New(m.api, m.perPage)
	m.deposit = deposit.New(m.api)
	m.history = history.New(m.api, m.perPage)
	m.cancelTx = cancel.New(m.api, m.perPage)
	m.profile = profile.New(m.api)
	m.resize()
}

func (m *Model) resize() {
	m.statusBar.Width = m.width
	m.login.Width = m.width
	m.dashboard.Width = m.contentWidth()
	m.users.Width = m.contentWidth()
	m.deposit.Width = m.contentWidth()
	m.history.Width = m.contentWidth()
	m.cancelTx.Width = m.contentWidth()
}

// Route returns the section currently shown.
func (m Model) Route() Route { return m.route }

// Overlay returns the active modal.
func (m Model) Overlay() Overlay { return m.overlay }

// Init arms the watchdog for a restored session, starts watching the
// session file and kicks off the status countdown.
func (m Model) Init() tea.Cmd {
	if m.store.Authenticated() {
		m.wd.Start()
	}
	return tea.Batch(m.initCmd, m.watchSession(), tick())
}

// Close releases the session watcher.
func (m Model) Close() {
	m.cancel()
	m.wd.Stop()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) watchSession() tea.Cmd {
	ch, err := m.store.Watch(m.ctx)
	if err != nil {
		log := logging.WithComponent("app")
		log.Warn().Err(err).Msg("session watch unavailable")
		return eventlog.Emit(eventlog.KindErr, "session watch: %v", err)
	}
	return waitRevoked(ch)
}

func waitRevoked(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return revokedMsg{ch: ch}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sig, ok := watchdog.SignalFor(msg); ok {
		m.wd.Touch(sig)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, nil

	case tickMsg:
		m.statusBar.Remaining = m.wd.Remaining()
		return m, tick()

	case eventlog.EventMsg:
		m.events.Add(msg.Kind, msg.Message)
		return m, nil

	case watchdog.ExpiredMsg:
		return m.expire()

	case revokedMsg:
		var cmd tea.Cmd
		if m.route != RouteLogin {
			m, cmd = m.endSession("session ended by another process")
		}
		return m, tea.Batch(cmd, waitRevoked(msg.ch))

	case UnauthorizedMsg:
		if m.route == RouteLogin {
			return m, nil
		}
		m, cmd := m.endSession("session rejected by the server")
		return m, cmd

	case login.AuthenticatedMsg:
		return m.authenticate(msg.Result)

	case profile.UpdatedMsg:
		m.setAdmin(msg.Admin)
		return m, nil

	case dashboard.AdminMsg:
		if msg.Err == nil && msg.Admin != nil {
			m.setAdmin(*msg.Admin)
		}
	}

	return m.broadcast(msg)
}

// broadcast hands asynchronous results to every section so a response
// still lands after the user navigated away.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.login, cmd = m.login.Update(msg)
	cmds = append(cmds, cmd)
	m.dashboard, cmd = m.dashboard.Update(msg)
	cmds = append(cmds, cmd)
	m.users, cmd = m.users.Update(msg)
	cmds = append(cmds, cmd)

	before := m.deposit.Balance()
	m.deposit, cmd = m.deposit.Update(msg)
	cmds = append(cmds, cmd)
	if after := m.deposit.Balance(); after != before && m.statusBar.HasAdmin {
		m.statusBar.Balance = after
	}

	m.history, cmd = m.history.Update(msg)
	cmds = append(cmds, cmd)
	m.cancelTx, cmd = m.cancelTx.Update(msg)
	cmds = append(cmds, cmd)
	m.profile, cmd = m.profile.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) setAdmin(a client.Admin) {
	m.statusBar.Admin = a.DisplayName()
	m.statusBar.Balance = a.Balance
	m.statusBar.HasAdmin = true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Close()
		return m, tea.Quit
	}

	switch m.overlay {
	case OverlayExpired:
		if key.Matches(msg, m.keys.Confirm) || msg.Type == tea.KeyEsc {
			m.overlay = OverlayNone
			return m.navigate(RouteLogin)
		}
		return m, nil

	case OverlayLogout:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.endSession("signed out")
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		}
		return m, nil

	case OverlayHelp:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) {
			m.overlay = OverlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd

	case OverlayEventLog:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.EventLog):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.ScrollUp):
			m.events.ScrollUp(1)
		case key.Matches(msg, m.keys.ScrollDown):
			m.events.ScrollDown(1)
		case key.Matches(msg, m.keys.LogFilter):
			m.events.CycleFilter()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.EventLog) {
		m.overlay = OverlayEventLog
		return m, nil
	}

	// Open dialogs and search prompts own the keyboard.
	if m.viewModal() {
		return m.forwardKey(msg)
	}
	// Forms keep printable keys and tab for themselves.
	if m.formRoute() && textKey(msg) {
		return m.forwardKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Theme):
		return m.cycleTheme()

	case key.Matches(msg, m.keys.Help):
		m.help.SetTheme(m.themeMode)
		m.overlay = OverlayHelp
		return m, nil
	}

	if m.route == RouteLogin {
		return m.forwardKey(msg)
	}

	for i, b := range m.keys.Section {
		if key.Matches(msg, b) {
			return m.navigate(sections[i].route)
		}
	}

	switch {
	case key.Matches(msg, m.keys.NextSection):
		return m.navigate(m.step(1))
	case key.Matches(msg, m.keys.PrevSection):
		return m.navigate(m.step(-1))
	case key.Matches(msg, m.keys.Drawer):
		m.drawer = !m.drawer
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.overlay = OverlayLogout
		return m, nil
	}

	return m.forwardKey(msg)
}

func textKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyTab, tea.KeyShiftTab:
		return true
	}
	return false
}

func (m Model) viewModal() bool {
	switch m.route {
	case RouteUsers:
		return m.users.Modal()
	case RouteHistory:
		return m.history.Searching()
	case RouteCancel:
		return m.cancelTx.Modal()
	}
	return false
}

func (m Model) formRoute() bool {
	switch m.route {
	case RouteLogin, RouteDeposit, RouteProfile:
		return true
	}
	return false
}

func (m Model) forwardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route {
	case RouteLogin:
		m.login, cmd = m.login.Update(msg)
	case RouteDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case RouteUsers:
		m.users, cmd = m.users.Update(msg)
	case RouteDeposit:
		m.deposit, cmd = m.deposit.Update(msg)
	case RouteHistory:
		m.history, cmd = m.history.Update(msg)
	case RouteCancel:
		m.cancelTx, cmd = m.cancelTx.Update(msg)
	case RouteProfile:
		m.profile, cmd = m.profile.Update(msg)
	}
	return m, cmd
}

// step returns the section delta positions away from the current one.
func (m Model) step(delta int) Route {
	cur := 0
	for i, s := range sections {
		if s.route == m.route {
			cur = i
		}
	}
	n := len(sections)
	return sections[((cur+delta)%n+n)%n].route
}

// navigate switches section and loads its data. Without a token every
// route resolves to login.
func (m Model) navigate(r Route) (tea.Model, tea.Cmd) {
	if r != RouteLogin && !m.store.Authenticated() {
		r = RouteLogin
	}
	m.route = r
	m.statusBar.Section = r.String()

	var load tea.Cmd
	switch r {
	case RouteLogin:
		m.login.Reset()
	case RouteDashboard:
		load = m.dashboard.Load()
	case RouteUsers:
		load = m.users.Load()
	case RouteDeposit:
		load = m.deposit.Load()
	case RouteHistory:
		load = m.history.Load()
	case RouteCancel:
		load = m.cancelTx.Load()
	case RouteProfile:
		load = m.profile.Load(m.store.UserID())
	}
	return m, tea.Batch(load, eventlog.Emit(eventlog.KindNav, "-> %s", strings.ToLower(r.String())))
}

func (m Model) authenticate(res *client.LoginResult) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if err := m.store.Login(res.Token, res.UserID, res.User); err != nil {
		cmds = append(cmds, eventlog.Emit(eventlog.KindErr, "persist session: %v", err))
	}
	m.wd.Start()
	m.statusBar.Remaining = m.wd.Remaining()
	m.login.Reset()

	next, cmd := m.navigate(RouteDashboard)
	cmds = append(cmds, cmd, eventlog.Emit(eventlog.KindAuth, "signed in as %s", res.UserID))
	return next, tea.Batch(cmds...)
}

// endSession clears credentials and every section's data, then shows
// the login form.
func (m Model) endSession(reason string) (Model, tea.Cmd) {
	m.wd.Stop()
	var cmds []tea.Cmd
	if err := m.store.Clear(); err != nil {
		cmds = append(cmds, eventlog.Emit(eventlog.KindErr, "clear session: %v", err))
	}
	m.overlay = OverlayNone
	m.drawer = false
	m.statusBar.HasAdmin = false
	m.statusBar.Admin = ""
	m.statusBar.Balance = 0
	m.statusBar.Remaining = 0
	m.resetViews()
	m.route = RouteLogin
	m.statusBar.Section = RouteLogin.String()

	log := logging.WithComponent("app")
	log.Info().Str("reason", reason).Msg("session ended")
	cmds = append(cmds, eventlog.Emit(eventlog.KindAuth, "%s", reason))
	return m, tea.Batch(cmds...)
}

func (m Model) expire() (tea.Model, tea.Cmd) {
	if m.route == RouteLogin {
		return m, nil
	}
	prev := m.route
	m, cmd := m.endSession("idle timeout")
	// Stay on the old section behind the modal until acknowledged.
	m.route = prev
	m.overlay = OverlayExpired
	return m, tea.Batch(cmd, eventlog.Emit(eventlog.KindIdle, "no activity for %s", m.wd.Timeout()))
}

func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	m.themeMode = m.themeMode.Next()
	theme.Apply(m.themeMode)
	m.statusBar.Theme = m.themeMode
	m.help.SetTheme(m.themeMode)
	if err := m.store.SetThemeMode(string(m.themeMode)); err != nil {
		return m, eventlog.Emit(eventlog.KindErr, "save theme: %v", err)
	}
	return m, nil
}

func (m Model) contentWidth() int {
	if m.drawer {
		return max(m.width-drawerWidth, 40)
	}
	return m.width
}

const drawerWidth = 20

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.overlay == OverlayExpired {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			modal(ExpiredNotice, "enter:ok"))
	}

	header := m.statusBar.View()
	bodyHeight := max(m.height-lipgloss.Height(header)-2, 5)

	var body string
	switch m.overlay {
	case OverlayHelp:
		body = m.help.View(m.width, bodyHeight)
	case OverlayEventLog:
		body = m.events.View(m.width, bodyHeight)
	case OverlayLogout:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			modal("Log out of the console?", "y:confirm  esc:cancel"))
	default:
		body = m.renderSection(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderTabs(), body, m.footer())
}

func (m Model) renderSection(height int) string {
	var content string
	switch m.route {
	case RouteLogin:
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.login.View())
	case RouteDashboard:
		content = m.dashboard.View()
	case RouteUsers:
		content = m.users.View()
	case RouteDeposit:
		content = m.deposit.View()
	case RouteHistory:
		content = m.history.View()
	case RouteCancel:
		content = m.cancelTx.View()
	case RouteProfile:
		content = m.profile.View()
	}
	if m.drawer {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.renderDrawer(height), content)
	}
	return content
}

func (m Model) renderDrawer(height int) string {
	lines := []string{theme.StyleHeader.Render("MENU"), ""}
	for i, s := range sections {
		label := fmt.Sprintf("%d %s", i+1, s.title)
		if s.route == m.route {
			lines = append(lines, theme.StyleSelected.Render("> "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	lines = append(lines, "", theme.StyleDimmed.Render("  L logout"))
	return lipgloss.NewStyle().
		Width(drawerWidth-2).
		Height(max(height-2, 1)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(theme.ColorBorder).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderTabs() string {
	if m.route == RouteLogin {
		return ""
	}
	tabs := make([]string, 0, len(sections))
	for i, s := range sections {
		label := fmt.Sprintf(" %d:%s ", i+1, s.title)
		if s.route == m.route {
			tabs = append(tabs, theme.StyleSelected.Render(label))
		} else {
			tabs = append(tabs, theme.StyleDimmed.Render(label))
		}
	}
	return strings.Join(tabs, "")
}

func (m Model) footer() string {
	if m.route == RouteLogin {
		return theme.StyleDimmed.Render("  enter:sign in  ctrl+t:theme  f1:help  ctrl+c:quit")
	}
	return theme.StyleDimmed.Render("  1-6:section  tab:next  m:menu  t:theme  L:logout  ?:help  ctrl+l:events  q:quit")
}

func modal(message, actions string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.StyleHeader.Render(message),
		"",
		theme.StyleDimmed.Render(actions),
	)
	return lipgloss.NewStyle().
		Padding(1, 3).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorWarning).
		Render(content)
}
