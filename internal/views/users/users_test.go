package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/views/edituser"
	wizardview "github.com/digimonnaie/console/internal/views/wizard"
)

type blockCall struct {
	ids   []string
	block bool
}

type fakeAPI struct {
	users     []client.User
	listErr   error
	blocks    []blockCall
	deleted   []string
	deleteErr map[string]error
}

func (f *fakeAPI) ListUsers(context.Context, int, int) ([]client.User, error) {
	return f.users, f.listErr
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) BlockUsers(_ context.Context, ids []string, block bool) error {
	f.blocks = append(f.blocks, blockCall{ids: ids, block: block})
	return nil
}

func (f *fakeAPI) UpdateUser(context.Context, string, client.UserUpdate) error { return nil }

func (f *fakeAPI) CreateUser(context.Context, client.NewUser) (*client.User, error) {
	return &client.User{ID: "new"}, nil
}

func sampleUsers(n int) []client.User {
	out := make([]client.User, n)
	for i := range out {
		out[i] = client.User{
			ID:            fmt.Sprintf("u%d", i+1),
			FullName:      fmt.Sprintf("User%d Family%d", i+1, i+1),
			Email:         fmt.Sprintf("user%d@example.com", i+1),
			AccountNumber: fmt.Sprintf("DM-%04d", i+1),
			CreatedAt:     "2026-01-02T10:00:00Z",
			Role:          client.RoleClient,
		}
	}
	return out
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(api, 5)
	cmd := m.Load()
	m, _ = m.Update(cmd())
	require.Len(t, m.Users(), len(api.users))
	return m
}

func TestLoadError(t *testing.T) {
	api := &fakeAPI{listErr: &client.APIError{Status: 500, Message: "db down"}}
	m := New(api, 5)
	m, _ = m.Update(m.Load()())
	assert.Contains(t, m.View(), "db down")
}

func TestPaginationAndSearch(t *testing.T) {
	m := loaded(t, &fakeAPI{users: sampleUsers(12)})
	assert.Contains(t, m.View(), "Page 1/3")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, m.page.Page)
	assert.Len(t, m.current().Items, 2)

	m, _ = m.Update(runes("/"))
	assert.True(t, m.Modal())
	for _, r := range "user1" {
		m, _ = m.Update(runes(string(r)))
	}
	assert.Equal(t, 1, m.page.Page, "search resets to the first page")
	// user1, user10, user11, user12
	assert.Equal(t, 4, m.current().Total)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Modal())
}

func TestToggleBlockRow(t *testing.T) {
	api := &fakeAPI{users: sampleUsers(3)}
	m := loaded(t, api)

	m, cmd := m.Update(runes("b"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	require.Len(t, api.blocks, 1)
	assert.Equal(t, blockCall{ids: []string{"u1"}, block: true}, api.blocks[0])
	assert.True(t, m.Users()[0].Blocked)
	assert.Contains(t, m.View(), "Inactive")
}

func TestBlockSelectedUnblocksWhenAllBlocked(t *testing.T) {
	users := sampleUsers(3)
	users[0].Blocked = true
	users[1].Blocked = true
	api := &fakeAPI{users: users}
	m := loaded(t, api)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, cmd := m.Update(runes("B"))
	m, _ = m.Update(cmd())

	require.Len(t, api.blocks, 1)
	assert.Equal(t, blockCall{ids: []string{"u1", "u2"}, block: false}, api.blocks[0])
	assert.False(t, m.Users()[0].Blocked)
	assert.False(t, m.Users()[1].Blocked)
	assert.Empty(t, m.selected, "selection is cleared after a bulk action")
}

func TestBlockSelectedBlocksWhenMixed(t *testing.T) {
	users := sampleUsers(3)
	users[0].Blocked = true
	api := &fakeAPI{users: users}
	m := loaded(t, api)

	m, _ = m.Update(runes("a"))
	m, cmd := m.Update(runes("B"))
	m, _ = m.Update(cmd())

	require.Len(t, api.blocks, 1)
	assert.True(t, api.blocks[0].block)
	assert.Len(t, api.blocks[0].ids, 3)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	api := &fakeAPI{users: sampleUsers(2)}
	m := loaded(t, api)

	m, cmd := m.Update(runes("x"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Delete this user?")

	m, cmd = m.Update(runes("n"))
	assert.Nil(t, cmd, "anything but y cancels")
	assert.Empty(t, api.deleted)

	m, _ = m.Update(runes("x"))
	m, cmd = m.Update(runes("y"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, []string{"u1"}, api.deleted)
	require.Len(t, m.Users(), 1)
	assert.Equal(t, "u2", m.Users()[0].ID)
}

func TestDeleteSelectedStopsOnError(t *testing.T) {
	api := &fakeAPI{
		users:     sampleUsers(3),
		deleteErr: map[string]error{"u2": errors.New("boom")},
	}
	m := loaded(t, api)
	m, _ = m.Update(runes("a"))
	m, _ = m.Update(runes("X"))
	m, cmd := m.Update(runes("y"))
	m, _ = m.Update(cmd())

	assert.Equal(t, []string{"u1"}, api.deleted)
	assert.Len(t, m.Users(), 2)
	assert.True(t, strings.Contains(m.View(), "Delete failed"))
}

func TestCreatedUserPrepended(t *testing.T) {
	m := loaded(t, &fakeAPI{users: sampleUsers(2)})
	m, _ = m.Update(wizardview.CreatedMsg{User: client.User{ID: "fresh"}})
	assert.Equal(t, "fresh", m.Users()[0].ID)
}

func TestEditSavedReplacesRow(t *testing.T) {
	m := loaded(t, &fakeAPI{users: sampleUsers(2)})
	u := m.Users()[1]
	u.Email = "changed@example.com"
	m, _ = m.Update(edituser.SavedMsg{User: u})
	assert.Equal(t, "changed@example.com", m.Users()[1].Email)
}

func TestDialogsCaptureKeys(t *testing.T) {
	api := &fakeAPI{users: sampleUsers(2)}
	m := loaded(t, api)

	m, _ = m.Update(runes("n"))
	assert.True(t, m.Modal())
	assert.Contains(t, m.View(), "Create account")

	m, _ = m.Update(runes("b"))
	assert.Empty(t, api.blocks, "keys go to the dialog while it is open")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.False(t, m.Modal())

	m, _ = m.Update(runes("e"))
	assert.Contains(t, m.View(), "Edit user")
}
