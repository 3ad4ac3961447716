package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads store from credentials.toml whenever another process changes
// the file, for example a "ragdesk login" in a second terminal while a chat
// session is open. Watching stops when ctx is done.
//
// Reloading uses Store.Restore, so the reload is not written back.
func (m *Manager) Watch(ctx context.Context, store *Store, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating credentials watcher: %w", err)
	}

	// Watch the directory: editors and os.WriteFile may replace the file,
	// which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(m.targetPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(m.targetPath), err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != m.targetPath {
					continue
				}
				switch {
				case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
					m.reload(store, logger, true)
				case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
					m.reload(store, logger, false)
				}

			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("credentials watcher error", "error", werr)
			}
		}
	}()

	return nil
}

// reload installs the session found on disk. Only removal of the file may
// log the store out: a write that leaves no session is a file caught mid
// write (or truncated by hand) and is skipped.
func (m *Manager) reload(store *Store, logger *slog.Logger, removed bool) {
	creds, err := m.Load()
	if err != nil {
		// A partially written file fails to parse; the next write event retries.
		logger.Debug("skipping credentials reload", "error", err)
		return
	}

	if !removed && !creds.Authenticated() {
		logger.Debug("skipping credentials reload", "reason", "no session in file")
		return
	}

	if err := store.Restore(creds); err != nil {
		logger.Warn("ignoring persisted credentials", "error", err)
		return
	}

	logger.Debug("credentials reloaded", "authenticated", creds.Authenticated())
}
