package login

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/views/eventlog"
)

type fakeAPI struct {
	calls atomic.Int32
	res   *client.LoginResult
	err   error
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*client.LoginResult, error) {
	f.calls.Add(1)
	return f.res, f.err
}

func typeInto(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func fill(m Model) Model {
	m = typeInto(m, "admin@dm.com")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter}) // moves to password
	return typeInto(m, "secret")
}

// collect runs cmd and any batched commands, returning the messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSubmitRequiresFields(t *testing.T) {
	api := &fakeAPI{}
	m := New(api)
	m.form.Focus(fieldPassword)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty form should not submit")
	}
	if m.Err() == "" {
		t.Error("expected a validation message")
	}
}

func TestLoginSuccess(t *testing.T) {
	res := &client.LoginResult{Token: "tok", UserID: "admin-1"}
	api := &fakeAPI{res: res}
	m := fill(New(api))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Loading() {
		t.Fatal("expected loading after submit")
	}

	// A second enter while loading must not start another request.
	m, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if again != nil {
		again()
	}

	done := cmd()
	if api.calls.Load() != 1 {
		t.Fatalf("expected 1 login call, got %d", api.calls.Load())
	}

	m, cmd = m.Update(done)
	if m.Loading() {
		t.Error("loading should clear after response")
	}
	var authed bool
	for _, msg := range collect(cmd) {
		if a, ok := msg.(AuthenticatedMsg); ok {
			authed = a.Result == res
		}
	}
	if !authed {
		t.Error("expected AuthenticatedMsg carrying the result")
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	api := &fakeAPI{err: &client.APIError{Status: 401, Message: "Invalid credentials"}}
	m := fill(New(api))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = m.Update(cmd())

	if m.Err() != "Invalid credentials" {
		t.Errorf("Err() = %q", m.Err())
	}
	if !strings.Contains(m.View(), "Invalid credentials") {
		t.Error("view should show server message")
	}
	for _, msg := range collect(cmd) {
		if ev, ok := msg.(eventlog.EventMsg); ok && ev.Kind != eventlog.KindErr {
			t.Errorf("unexpected event kind %q", ev.Kind)
		}
	}
}
