// Package credentials holds the ragdesk session: the in-memory Store that the
// API client reads tokens from, the credentials.toml Manager that persists it
// in the .ragdesk/ directory, and helpers to inspect access tokens.
package credentials

import (
	"errors"
	"sync"
)

// ErrIncomplete is returned when an access token is installed without a user
// or a user without an access token.
var ErrIncomplete = errors.New("credentials need both a user and an access token")

// Observer is notified with the new snapshot after every Install or Clear.
// Observers run synchronously and must not mutate the Store.
type Observer func(Credentials)

// Store is the authoritative in-memory session. It performs no I/O; a
// persistence collaborator subscribes with OnChange.
type Store struct {
	// notifyMu serializes mutations together with their notifications so
	// observers see snapshots in mutation order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	creds     Credentials
	observers []Observer
}

func NewStore() *Store {
	return &Store{}
}

// Get returns a snapshot of the current credentials.
func (s *Store) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.creds)
}

// Install atomically replaces the session. It is used by login and by token
// refresh.
func (s *Store) Install(user *User, accessToken, refreshToken string) error {
	if user == nil || accessToken == "" {
		return ErrIncomplete
	}

	s.mutate(Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
	return nil
}

// Clear drops the session (logout).
func (s *Store) Clear() {
	s.mutate(Credentials{})
}

// Restore replaces the session without notifying observers. It hydrates the
// Store from persisted state, so writing the state back is pointless.
// An empty Credentials value clears the Store.
func (s *Store) Restore(c Credentials) error {
	if (c.AccessToken == "") != (c.User == nil) {
		return ErrIncomplete
	}

	s.mu.Lock()
	s.creds = clone(c)
	s.mu.Unlock()
	return nil
}

// OnChange registers an Observer.
func (s *Store) OnChange(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) mutate(c Credentials) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.creds = clone(c)
	snapshot := clone(s.creds)
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func clone(c Credentials) Credentials {
	if c.User != nil {
		u := *c.User
		c.User = &u
	}
	return c
}
