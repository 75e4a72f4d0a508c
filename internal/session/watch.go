package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/digimonnaie/console/internal/logging"
)

// Watch observes the session file and sends on the returned channel each
// time another process ends the session (deletes the file or clears its
// token). Writes made through this Manager do not trigger it. The channel
// is closed when ctx is done.
func (m *Manager) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory: atomic rename replaces the file inode.
	if err := w.Add(m.dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", m.dir, err)
	}

	log := logging.WithComponent("session")
	revoked := make(chan struct{}, 1)
	target := filepath.Clean(m.Path())

	go func() {
		defer close(revoked)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				was := m.Authenticated()
				if err := m.Reload(); err != nil {
					log.Warn().Err(err).Msg("reloading session after change")
					continue
				}
				if was && !m.Authenticated() {
					log.Info().Str("op", ev.Op.String()).Msg("session ended externally")
					select {
					case revoked <- struct{}{}:
					default:
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("session watcher error")
			}
		}
	}()

	return revoked, nil
}
