package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digimonnaie/console/internal/client"
)

type fakeAPI struct {
	users []client.User
	txs   []client.Transaction
	admin *client.Admin
	txErr error
}

func (f fakeAPI) ListUsers(context.Context, int, int) ([]client.User, error) { return f.users, nil }
func (f fakeAPI) ListTransactions(context.Context) ([]client.Transaction, error) {
	return f.txs, f.txErr
}
func (f fakeAPI) Me(context.Context) (*client.Admin, error) { return f.admin, nil }

func load(m Model) Model {
	batch := m.Load()().(tea.BatchMsg)
	for _, c := range batch {
		m, _ = m.Update(c())
	}
	return m
}

func TestStats(t *testing.T) {
	api := fakeAPI{
		users: []client.User{
			{ID: "1", FullName: "Old User", CreatedAt: "2025-01-01T00:00:00Z", Role: client.RoleClient},
			{ID: "2", FullName: "New User", CreatedAt: "2026-06-01T00:00:00Z", Blocked: true, Role: client.RoleDistributeur},
		},
		txs: []client.Transaction{
			{ID: "t1", Status: "completed"},
			{ID: "t2", Status: "cancelled"},
		},
		admin: &client.Admin{Nom: "Diop", Prenom: "Awa", Balance: 150000},
	}
	m := load(New(api))
	m.Width = 160

	if m.Loading() {
		t.Fatal("expected all loads to finish")
	}
	v := m.View()
	for _, want := range []string{"Users: 2", "Active: 1", "Inactive: 1", "Distributors: 1", "Cancelled: 1", "150 000 CFA"} {
		if !strings.Contains(v, want) {
			t.Errorf("dashboard should contain %q", want)
		}
	}
	if m.users[0].ID != "2" {
		t.Errorf("recent accounts should be newest first, got %s", m.users[0].ID)
	}
}

func TestPartialFailure(t *testing.T) {
	m := load(New(fakeAPI{txErr: errors.New("boom")}))
	v := m.View()
	if !strings.Contains(v, "transactions: Server error") {
		t.Errorf("expected failure notice, got:\n%s", v)
	}
	if !strings.Contains(v, "No accounts") {
		t.Error("empty users should render placeholder")
	}
}
