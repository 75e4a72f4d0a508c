// Package history lists every transaction with search and pagination.
package history

import (
	"context"

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

// API is the backend surface the view reads.
type API interface {
	ListTransactions(ctx context.Context) ([]client.Transaction, error)
}

// LoadedMsg carries the fetched transactions.
type LoadedMsg struct {
	Transactions []client.Transaction
	Err          error
}

var (
	searchKey = key.NewBinding(key.WithKeys("/"))
	nextKey   = key.NewBinding(key.WithKeys("right", "]"))
	prevKey   = key.NewBinding(key.WithKeys("left", "["))
	reloadKey = key.NewBinding(key.WithKeys("r"))
)

// Model is the history view.
type Model struct {
	api       API
	perPage   int
	txs       []client.Transaction
	page      listing.Cursor
	search    textinput.Model
	searching bool
	loading   bool
	err       string
	Width     int
}

func New(api API, perPage int) Model {
	if perPage <= 0 {
		perPage = 5
	}
	ti := textinput.New()
	ti.Placeholder = "id, type, name or email"
	ti.Prompt = "/ "
	return Model{api: api, perPage: perPage, page: listing.Cursor{Page: 1}, search: ti}
}

func (m *Model) Load() tea.Cmd {
	m.loading = true
	api := m.api
	return func() tea.Msg {
		txs, err := api.ListTransactions(context.Background())
		return LoadedMsg{Transactions: txs, Err: err}
	}
}

// Searching reports whether the search input owns the keyboard.
func (m Model) Searching() bool { return m.searching }

// Filter matches the transaction id, type, and both parties' names and
// emails.
func Filter(txs []client.Transaction, term string) []client.Transaction {
	return listing.Filter(txs, term,
		func(t client.Transaction) string { return t.TransactionID },
		func(t client.Transaction) string { return t.Type },
		func(t client.Transaction) string { return partyName(t.From) },
		func(t client.Transaction) string { return partyName(t.To) },
		func(t client.Transaction) string { return partyEmail(t.From) },
		func(t client.Transaction) string { return partyEmail(t.To) },
	)
}

func partyName(p *client.Party) string {
	if p == nil {
		return ""
	}
	return p.FullName
}

func partyEmail(p *client.Party) string {
	if p == nil {
		return ""
	}
	return p.Email
}

func (m Model) current() listing.Page[client.Transaction] {
	return listing.Paginate(Filter(m.txs, m.page.Term), m.page.Page, m.perPage)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = client.UserMessage(msg.Err)
			return m, eventlog.Emit(eventlog.KindErr, "list transactions: %v", msg.Err)
		}
		m.err = ""
		m.txs = msg.Transactions
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
				m.searching = false
				m.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.page.SetTerm(m.search.Value())
			return m, cmd
		}
		switch {
		case key.Matches(msg, searchKey):
			m.searching = true
			cmd := m.search.Focus()
			return m, cmd
		case key.Matches(msg, nextKey):
			m.page.Next(m.current().Count)
		case key.Matches(msg, prevKey):
			m.page.Prev()
		case key.Matches(msg, reloadKey):
			cmd := m.Load()
			return m, cmd
		}
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	width := max(m.Width, 40)
	title := theme.StyleTitle.Render("Transaction history")

	search := theme.StyleDimmed.Render("/ to search")
	if m.searching || m.page.Term != "" {
		search = m.search.View()
	}

	sections := []string{title, search, txtable.Render(m.current(), -1, width)}
	switch {
	case m.loading:
		sections = append(sections, theme.StyleDimmed.Render("Loading transactions..."))
	case m.err != "":
		sections = append(sections, theme.StyleError.Render("Unable to load transactions: "+m.err))
	}
	sections = append(sections, theme.StyleDimmed.Render("  /:search  ←/→:page  r:reload"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
