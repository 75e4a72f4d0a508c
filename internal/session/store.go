// Package session owns the credentials persisted between runs of the
// console: the bearer token, the admin's user id, the user-info blob
// returned at login and the theme preference. All reads and writes of
// that state go through a Manager.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/digimonnaie/console/internal/logging"
)

const fileName = "session.json"

// ThemeSystem is the theme preference used when none was saved.
const ThemeSystem = "system"

type state struct {
	Token     string          `json:"token,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	User      json.RawMessage `json:"user,omitempty"`
	ThemeMode string          `json:"themeMode,omitempty"`
}

// Manager mediates access to the persisted session state.
type Manager struct {
	dir string

	mu sync.RWMutex
	st state
}

// Open loads the session file from dir. A missing file is an empty,
// unauthenticated session.
func Open(dir string) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("session: empty state dir")
	}
	m := &Manager{dir: dir}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Path returns the full path to the session file.
func (m *Manager) Path() string {
	return filepath.Join(m.dir, fileName)
}

// Reload re-reads the file, replacing the in-memory state. The write lock
// is held across the read so a reload never interleaves with a write.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.read()
	if err != nil {
		return err
	}
	m.st = st
	return nil
}

func (m *Manager) read() (state, error) {
	var st state
	data, err := os.ReadFile(m.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("reading session: %w", err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing session: %w", err)
	}
	return st, nil
}

// Token returns the bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Token
}

// UserID returns the logged-in admin's id.
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.UserID
}

// User returns a copy of the user-info blob saved at login.
func (m *Manager) User() json.RawMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st.User == nil {
		return nil
	}
	out := make(json.RawMessage, len(m.st.User))
	copy(out, m.st.User)
	return out
}

// Authenticated reports whether a token is present.
func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// Login records a fresh session and persists it.
func (m *Manager) Login(token, userID string, user json.RawMessage) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Token = token
	m.st.UserID = userID
	m.st.User = append(json.RawMessage(nil), user...)

	log := logging.WithComponent("session")
	log.Info().Str("user_id", userID).Msg("session started")
	return m.save(m.st)
}

// Clear removes the token, user id and user blob. The theme preference
// survives.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Token = ""
	m.st.UserID = ""
	m.st.User = nil

	log := logging.WithComponent("session")
	log.Info().Msg("session cleared")
	return m.save(m.st)
}

// ThemeMode returns the saved theme preference, "system" by default.
func (m *Manager) ThemeMode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st.ThemeMode == "" {
		return ThemeSystem
	}
	return m.st.ThemeMode
}

// SetThemeMode persists the theme preference.
func (m *Manager) SetThemeMode(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.ThemeMode = mode
	return m.save(m.st)
}

// save writes st to disk. Callers hold the write lock.
func (m *Manager) save(st state) error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')
	if err := renameio.WriteFile(m.Path(), data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}
