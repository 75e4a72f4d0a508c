package session

import (
	"encoding/json"
	"os"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenEmptyDir(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())
	assert.Empty(t, m.UserID())
	assert.Nil(t, m.User())
	assert.Equal(t, ThemeSystem, m.ThemeMode())
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestLoginPersists(t *testing.T) {
	dir := t.TempDir()
	m, err := Open(dir)
	require.NoError(t, err)

	user := json.RawMessage(`{"id":"a1","fullname":"Awa Diop"}`)
	require.NoError(t, m.Login("tok-123", "a1", user))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, reopened.Authenticated())
	assert.Equal(t, "tok-123", reopened.Token())
	assert.Equal(t, "a1", reopened.UserID())
	assert.JSONEq(t, string(user), string(reopened.User()))

	info, err := os.Stat(m.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, m.Login("", "a1", nil))
	assert.False(t, m.Authenticated())
}

func TestClearKeepsTheme(t *testing.T) {
	dir := t.TempDir()
	m, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, m.SetThemeMode("dark"))
	require.NoError(t, m.Login("tok", "a1", json.RawMessage(`{}`)))
	require.NoError(t, m.Clear())

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.False(t, reopened.Authenticated())
	assert.Empty(t, reopened.UserID())
	assert.Nil(t, reopened.User())
	assert.Equal(t, "dark", reopened.ThemeMode())
}

func TestUserReturnsCopy(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, m.Login("tok", "a1", json.RawMessage(`{"a":1}`)))

	u := m.User()
	u[0] = 'X'
	assert.JSONEq(t, `{"a":1}`, string(m.User()))
}

func TestOpenCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0o600))
	_, err := Open(dir)
	assert.Error(t, err)
}

func TestReloadDoesNotLoseConcurrentWrites(t *testing.T) {
	m, err := Open(t.TempDir())
	require.NoError(t, err)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = m.Reload()
			}
		}
	}()

	for i := 0; i < 200; i++ {
		mode := fmt.Sprintf("mode-%d", i)
		require.NoError(t, m.SetThemeMode(mode))
		if got := m.ThemeMode(); got != mode {
			close(stop)
			wg.Wait()
			t.Fatalf("theme = %q right after setting %q", got, mode)
		}
	}
	close(stop)
	wg.Wait()
}
