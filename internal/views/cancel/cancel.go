// Package cancel lets the admin reverse a transaction with a reason.
package cancel

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/listing"
	"github.com/digimonnaie/console/internal/theme"
	"github.com/digimonnaie/console/internal/views/eventlog"
	"github.com/digimonnaie/console/internal/views/txtable"
)

// API is the backend surface the view needs.
type API interface {
	ListTransactions(ctx context.Context) ([]client.Transaction, error)
	CancelTransaction(ctx context.Context, transactionID, reason string) (string, error)
}

// LoadedMsg carries the fetched transactions.
type LoadedMsg struct {
	Transactions []client.Transaction
	Err          error
}

type doneMsg struct {
	id      string
	message string
	err     error
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeReason
)

var (
	upKey     = key.NewBinding(key.WithKeys("k", "up"))
	downKey   = key.NewBinding(key.WithKeys("j", "down"))
	nextKey   = key.NewBinding(key.WithKeys("right", "]"))
	prevKey   = key.NewBinding(key.WithKeys("left", "["))
	searchKey = key.NewBinding(key.WithKeys("/"))
	openKey   = key.NewBinding(key.WithKeys("enter", "c"))
	reloadKey = key.NewBinding(key.WithKeys("r"))
)

// Model is the cancel view.
type Model struct {
	api     API
	perPage int
	txs     []client.Transaction
	page    listing.Cursor
	cursor  int
	mode    mode

	search textinput.Model
	reason textinput.Model
	target client.Transaction

	loading bool
	busy    bool
	notice  string
	isErr   bool
	Width   int
}

func New(api API, perPage int) Model {
	if perPage <= 0 {
		perPage = 5
	}
	s := textinput.New()
	s.Placeholder = "recipient name or transaction id"
	s.Prompt = "/ "
	r := textinput.New()
	r.Placeholder = "Reason for cancellation"
	r.Prompt = "› "
	r.CharLimit = 200
	return Model{api: api, perPage: perPage, page: listing.Cursor{Page: 1}, search: s, reason: r}
}

func (m *Model) Load() tea.Cmd {
	m.loading = true
	api := m.api
	return func() tea.Msg {
		txs, err := api.ListTransactions(context.Background())
		return LoadedMsg{Transactions: txs, Err: err}
	}
}

// Modal reports whether an input owns the keyboard.
func (m Model) Modal() bool { return m.mode != modeBrowse }

func (m Model) Notice() string { return m.notice }

// Filter matches the recipient's name, case-insensitively, or the
// transaction id.
func Filter(txs []client.Transaction, term string) []client.Transaction {
	return listing.Filter(txs, term,
		func(t client.Transaction) string {
			if t.To == nil {
				return ""
			}
			return t.To.FullName
		},
		func(t client.Transaction) string { return t.TransactionID },
	)
}

func (m Model) current() listing.Page[client.Transaction] {
	return listing.Paginate(Filter(m.txs, m.page.Term), m.page.Page, m.perPage)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.setNotice("Unable to load transactions: "+client.UserMessage(msg.Err), true)
			return m, eventlog.Emit(eventlog.KindErr, "list transactions: %v", msg.Err)
		}
		m.txs = msg.Transactions
		m.cursor = max(0, min(m.cursor, len(m.current().Items)-1))
		return m, nil

	case doneMsg:
		m.busy = false
		if msg.err != nil {
			m.setNotice(client.UserMessage(msg.err), true)
			return m, eventlog.Emit(eventlog.KindErr, "cancel %s: %v", msg.id, msg.err)
		}
		m.mode = modeBrowse
		m.reason.Blur()
		m.setNotice(msg.message, false)
		load := m.Load()
		return m, tea.Batch(load, eventlog.Emit(eventlog.KindAPI, "cancelled transaction %s", msg.id))

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearch(msg)
		case modeReason:
			return m.handleReason(msg)
		}
		return m.handleBrowse(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeReason:
		m.reason, cmd = m.reason.Update(msg)
	}
	return m, cmd
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice = s
	m.isErr = isErr
}

func (m Model) handleBrowse(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, upKey):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, downKey):
		m.cursor = min(m.cursor+1, max(len(m.current().Items)-1, 0))
	case key.Matches(msg, nextKey):
		m.page.Next(m.current().Count)
		m.cursor = 0
	case key.Matches(msg, prevKey):
		m.page.Prev()
		m.cursor = 0
	case key.Matches(msg, searchKey):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, reloadKey):
		cmd := m.Load()
		return m, cmd
	case key.Matches(msg, openKey):
		items := m.current().Items
		if m.cursor >= len(items) {
			return m, nil
		}
		t := items[m.cursor]
		if t.Cancelled() {
			m.setNotice("This transaction is already cancelled.", true)
			return m, nil
		}
		m.target = t
		m.mode = modeReason
		m.notice = ""
		m.reason.Reset()
		cmd := m.reason.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.page.SetTerm(m.search.Value()) {
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) handleReason(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.reason.Blur()
		return m, nil
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		m.busy = true
		api, id, reason := m.api, m.target.TransactionID, strings.TrimSpace(m.reason.Value())
		return m, func() tea.Msg {
			message, err := api.CancelTransaction(context.Background(), id, reason)
			return doneMsg{id: id, message: message, err: err}
		}
	}
	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	width := max(m.Width, 40)
	title := theme.StyleTitle.Render("Cancel a transaction")

	search := theme.StyleDimmed.Render("/ to search")
	if m.mode == modeSearch || m.page.Term != "" {
		search = m.search.View()
	}

	cursor := m.cursor
	sections := []string{title, search, txtable.Render(m.current(), cursor, width)}

	if m.mode == modeReason {
		prompt := lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleHeader.Render("Cancel "+m.target.TransactionID+" · "+theme.Amount(m.target.Amount)+" to "+m.target.RecipientName()),
			m.reason.View(),
			theme.StyleDimmed.Render("enter:confirm  esc:back"),
		)
		sections = append(sections, theme.StyleBorder.Padding(0, 1).Render(prompt))
	}

	switch {
	case m.busy:
		sections = append(sections, theme.StyleDimmed.Render("Cancelling..."))
	case m.loading:
		sections = append(sections, theme.StyleDimmed.Render("Loading transactions..."))
	case m.notice != "" && m.isErr:
		sections = append(sections, theme.StyleError.Render(m.notice))
	case m.notice != "":
		sections = append(sections, theme.StyleSuccess.Render(m.notice))
	}
	sections = append(sections, theme.StyleDimmed.Render("  j/k:row  enter:cancel  /:search  ←/→:page  r:reload"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
