// Package users is the managed-accounts table: search, pagination,
// selection, block/unblock, delete, and the edit and create dialogs.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/listing"
	"github.com/digimonnaie/console/internal/views/edituser"
	"github.com/digimonnaie/console/internal/views/eventlog"
	wizardview "github.com/digimonnaie/console/internal/views/wizard"
	"github.com/digimonnaie/console/internal/wizard"
)

// FetchLimit is the page size requested from GET /users.
const FetchLimit = 100

// API is the backend surface the table and its dialogs need.
type API interface {
	ListUsers(ctx context.Context, page, limit int) ([]client.User, error)
	DeleteUser(ctx context.Context, id string) error
	BlockUsers(ctx context.Context, ids []string, block bool) error
	edituser.API
	wizardview.API
}

// LoadedMsg carries the fetched list.
type LoadedMsg struct {
	Users []client.User
	Err   error
}

type blockDoneMsg struct {
	ids   []string
	block bool
	err   error
}

type deleteDoneMsg struct {
	deleted []string
	err     error
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteOne
	confirmDeleteSelected
)

// Model is the users view.
type Model struct {
	api     API
	perPage int
	keys    KeyMap

	users    []client.User
	selected map[string]bool
	cursor   int // row within the current page
	page     listing.Cursor

	search    textinput.Model
	searching bool

	confirm   confirmKind
	confirmID string

	loading bool
	busy    bool
	notice  string
	isErr   bool

	edit   edituser.Model
	create wizardview.Model

	Width  int
	Height int
}

// New creates the view. perPage <= 0 falls back to 5.
func New(api API, perPage int, opts ...wizard.Option) Model {
	if perPage <= 0 {
		perPage = 5
	}
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/ "
	return Model{
		api:      api,
		perPage:  perPage,
		keys:     DefaultKeyMap(),
		selected: make(map[string]bool),
		page:     listing.Cursor{Page: 1},
		search:   ti,
		edit:     edituser.New(api),
		create:   wizardview.New(api, opts...),
	}
}

// Load fetches the user list.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	api := m.api
	return func() tea.Msg {
		users, err := api.ListUsers(context.Background(), 1, FetchLimit)
		return LoadedMsg{Users: users, Err: err}
	}
}

// Users returns the loaded list.
func (m Model) Users() []client.User { return m.users }

// Modal reports whether a dialog or prompt owns the keyboard.
func (m Model) Modal() bool {
	return m.edit.IsOpen() || m.create.IsOpen() || m.confirm != confirmNone || m.searching
}

func (m Model) filtered() []client.User {
	return listing.Filter(m.users, m.page.Term,
		client.User.FirstName,
		client.User.LastName,
		func(u client.User) string { return u.Email },
		func(u client.User) string { return u.Phone },
		func(u client.User) string { return u.Address },
		func(u client.User) string { return u.AccountNumber },
		client.User.Date,
		client.User.Status,
	)
}

func (m Model) current() listing.Page[client.User] {
	return listing.Paginate(m.filtered(), m.page.Page, m.perPage)
}

func (m Model) cursorUser() (client.User, bool) {
	p := m.current()
	if m.cursor < 0 || m.cursor >= len(p.Items) {
		return client.User{}, false
	}
	return p.Items[m.cursor], true
}

func (m *Model) setNotice(msg string, isErr bool) {
	m.notice = msg
	m.isErr = isErr
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.setNotice("Unable to load users: "+client.UserMessage(msg.Err), true)
			return m, eventlog.Emit(eventlog.KindErr, "list users: %v", msg.Err)
		}
		m.users = msg.Users
		m.clampCursor()
		return m, eventlog.Emit(eventlog.KindAPI, "loaded %d users", len(msg.Users))

	case blockDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setNotice("Block/unblock failed: "+client.UserMessage(msg.err), true)
			return m, eventlog.Emit(eventlog.KindErr, "block users: %v", msg.err)
		}
		ids := toSet(msg.ids)
		for i := range m.users {
			if ids[m.users[i].ID] {
				m.users[i].Blocked = msg.block
			}
		}
		if len(msg.ids) > 1 {
			m.selected = make(map[string]bool)
		}
		verb := "Unblocked"
		if msg.block {
			verb = "Blocked"
		}
		m.setNotice(fmt.Sprintf("%s %d user(s).", verb, len(msg.ids)), false)
		return m, eventlog.Emit(eventlog.KindAPI, "%s %v", strings.ToLower(verb), msg.ids)

	case deleteDoneMsg:
		m.busy = false
		gone := toSet(msg.deleted)
		kept := m.users[:0:0]
		for _, u := range m.users {
			if !gone[u.ID] {
				kept = append(kept, u)
			}
			delete(m.selected, u.ID)
		}
		m.users = kept
		m.clampCursor()
		cmd := eventlog.Emit(eventlog.KindAPI, "deleted %v", msg.deleted)
		if msg.err != nil {
			m.setNotice("Delete failed: "+client.UserMessage(msg.err), true)
			return m, tea.Batch(cmd, eventlog.Emit(eventlog.KindErr, "delete users: %v", msg.err))
		}
		m.setNotice(fmt.Sprintf("Deleted %d user(s).", len(msg.deleted)), false)
		return m, cmd

	case edituser.SavedMsg:
		for i := range m.users {
			if m.users[i].ID == msg.User.ID {
				m.users[i] = msg.User
			}
		}
		m.setNotice("User updated.", false)
		return m, nil

	case wizardview.CreatedMsg:
		m.users = append([]client.User{msg.User}, m.users...)
		return m, nil

	case wizardview.DoneMsg:
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	if m.edit.IsOpen() {
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.create.IsOpen() {
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.edit.IsOpen() {
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		return m, cmd
	}
	if m.create.IsOpen() {
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		return m, cmd
	}
	if m.confirm != confirmNone {
		return m.handleConfirm(msg)
	}
	if m.searching {
		return m.handleSearch(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.current().Items)-1, 0))
	case key.Matches(msg, m.keys.NextPage):
		m.page.Next(m.current().Count)
		m.cursor = 0
	case key.Matches(msg, m.keys.PrevPage):
		m.page.Prev()
		m.cursor = 0
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Select):
		if u, ok := m.cursorUser(); ok {
			m.toggleSelected(u.ID)
		}
	case key.Matches(msg, m.keys.SelectPage):
		m.toggleSelectPage()
	case key.Matches(msg, m.keys.Reload):
		cmd := m.Load()
		return m, cmd
	case key.Matches(msg, m.keys.Create):
		cmd := m.create.Open()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		if u, ok := m.cursorUser(); ok {
			cmd := m.edit.Open(u)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Block):
		if u, ok := m.cursorUser(); ok {
			return m.block([]string{u.ID}, !u.Blocked)
		}
	case key.Matches(msg, m.keys.BlockSelected):
		ids := m.selectedIDs()
		if len(ids) == 0 {
			return m, nil
		}
		return m.block(ids, !m.allBlocked(ids))
	case key.Matches(msg, m.keys.Delete):
		if u, ok := m.cursorUser(); ok {
			m.confirm = confirmDeleteOne
			m.confirmID = u.ID
		}
	case key.Matches(msg, m.keys.DeleteSelected):
		if len(m.selectedIDs()) > 0 {
			m.confirm = confirmDeleteSelected
		}
	}
	return m, nil
}

func (m Model) handleSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
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

func (m Model) handleConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	kind, id := m.confirm, m.confirmID
	m.confirm, m.confirmID = confirmNone, ""
	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}
	switch kind {
	case confirmDeleteOne:
		return m.remove([]string{id})
	case confirmDeleteSelected:
		return m.remove(m.selectedIDs())
	}
	return m, nil
}

func (m Model) block(ids []string, block bool) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	api := m.api
	return m, func() tea.Msg {
		err := api.BlockUsers(context.Background(), ids, block)
		return blockDoneMsg{ids: ids, block: block, err: err}
	}
}

// remove deletes each id in turn and stops at the first failure.
func (m Model) remove(ids []string) (Model, tea.Cmd) {
	if m.busy || len(ids) == 0 {
		return m, nil
	}
	m.busy = true
	api := m.api
	return m, func() tea.Msg {
		var done []string
		for _, id := range ids {
			if err := api.DeleteUser(context.Background(), id); err != nil {
				return deleteDoneMsg{deleted: done, err: err}
			}
			done = append(done, id)
		}
		return deleteDoneMsg{deleted: done}
	}
}

func (m *Model) toggleSelected(id string) {
	if m.selected[id] {
		delete(m.selected, id)
		return
	}
	m.selected[id] = true
}

// toggleSelectPage selects every row on the page, or clears them when all
// are already selected.
func (m *Model) toggleSelectPage() {
	items := m.current().Items
	all := len(items) > 0
	for _, u := range items {
		if !m.selected[u.ID] {
			all = false
			break
		}
	}
	for _, u := range items {
		if all {
			delete(m.selected, u.ID)
		} else {
			m.selected[u.ID] = true
		}
	}
}

// selectedIDs returns selected ids in list order.
func (m Model) selectedIDs() []string {
	var ids []string
	for _, u := range m.users {
		if m.selected[u.ID] {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

func (m Model) allBlocked(ids []string) bool {
	set := toSet(ids)
	for _, u := range m.users {
		if set[u.ID] && !u.Blocked {
			return false
		}
	}
	return true
}

func (m *Model) clampCursor() {
	m.cursor = max(0, min(m.cursor, len(m.current().Items)-1))
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
