package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/ragdesk/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// file is the on-disk layout of credentials.toml.
type file struct {
	Version int      `toml:"version"`
	Session *session `toml:"session,omitempty"`
}

type session struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	User         User   `toml:"user"`
}

// Manager manages reading and writing credentials.toml in the .ragdesk/ directory
// so a session survives between CLI invocations.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .ragdesk/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// Watch events carry resolved paths, so the target must be resolved too.
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns empty Credentials if the file does not exist.
func (m *Manager) Load() (Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("reading credentials: %w", err)
	}

	f := &file{}
	if err := toml.Unmarshal(data, f); err != nil {
		return Credentials{}, fmt.Errorf("parsing credentials: %w", err)
	}

	if f.Version != currentVersion {
		return Credentials{}, fmt.Errorf("unsupported credentials version %d (expected %d)", f.Version, currentVersion)
	}

	if f.Session == nil || f.Session.AccessToken == "" {
		return Credentials{}, nil
	}

	user := f.Session.User
	return Credentials{
		AccessToken:  f.Session.AccessToken,
		RefreshToken: f.Session.RefreshToken,
		User:         &user,
	}, nil
}

// Save writes the session to credentials.toml with 0600 permissions.
// Saving unauthenticated credentials removes the file.
//
// The file is written to a temporary sibling and renamed into place, so a
// concurrent reader sees either the previous session or the new one.
func (m *Manager) Save(creds Credentials) error {
	if !creds.Authenticated() {
		return m.Remove()
	}

	f := &file{
		Version: currentVersion,
		Session: &session{
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
			User:         *creds.User,
		},
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	return m.replace(buf.Bytes())
}

func (m *Manager) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(m.targetPath), ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(0o600)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, m.targetPath)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// Remove deletes credentials.toml. Returns nil if it does not exist.
func (m *Manager) Remove() error {
	if err := os.Remove(m.targetPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}

// Hydrate loads the persisted session into store.
func (m *Manager) Hydrate(store *Store) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}
	return store.Restore(creds)
}

// Persist keeps credentials.toml in sync with every change to store. Write
// failures are logged; the in-memory session stays authoritative.
func (m *Manager) Persist(store *Store, logger *slog.Logger) {
	store.OnChange(func(c Credentials) {
		if err := m.Save(c); err != nil {
			logger.Warn("could not persist credentials",
				"path", m.targetPath,
				"error", err,
			)
		}
	})
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}
