package authstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"auction-house/internal/models"
)

// Listener receives the new session after every Save or Clear. The
// second argument reports whether the session is authenticated.
type Listener func(session models.Session, authenticated bool)

// Store persists the bearer token and the profile record to a local
// state file, mirroring two string keys: the raw token and the
// JSON-serialized profile. Absence of either key means logged out.
//
// Store also carries the "auth changed" signal: components subscribe
// and are notified after every mutation, so navigation chrome can
// resynchronize without a reload.
type Store struct {
	mu        sync.RWMutex
	path      string
	session   models.Session
	listeners []Listener
}

// stateFile is the on-disk shape: two string keys, localStorage style.
type stateFile struct {
	Token   string `json:"token,omitempty"`
	Profile string `json:"profile,omitempty"`
}

// NewFileStore opens (or lazily creates) the store backed by the given
// file. An existing file with only one of the two keys loads as
// unauthenticated.
func NewFileStore(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authstore: read %s: %w", path, err)
	}

	var state stateFile
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt state file is treated as logged out, not fatal.
		return s, nil
	}

	if state.Token == "" || state.Profile == "" {
		return s, nil
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(state.Profile), &profile); err != nil {
		return s, nil
	}

	s.session = models.Session{Token: state.Token, Profile: profile}
	return s, nil
}

// Save persists the session and notifies subscribers. The profile is
// serialized through models.Profile, so a token key embedded in a raw
// upstream payload never reaches the profile slot.
func (s *Store) Save(session models.Session) error {
	encoded, err := json.Marshal(session.Profile)
	if err != nil {
		return fmt.Errorf("authstore: encode profile: %w", err)
	}

	s.mu.Lock()
	s.session = session
	err = s.write(stateFile{Token: session.Token, Profile: string(encoded)})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Clear removes both keys and notifies subscribers.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.session = models.Session{}
	err := s.write(stateFile{})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Token returns the saved bearer token. ok is false when the store is
// unauthenticated, including the token-without-profile case.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.session.Authenticated() {
		return "", false
	}
	return s.session.Token, true
}

// Profile returns the saved profile record.
func (s *Store) Profile() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.session.Authenticated() {
		return models.Profile{}, false
	}
	return s.session.Profile, true
}

// Session returns the full saved session.
func (s *Store) Session() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.session.Authenticated() {
		return models.Session{}, false
	}
	return s.session, true
}

// Subscribe registers a listener for the auth-changed signal. Listeners
// are invoked synchronously, outside the store lock, after every Save
// and Clear.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	s.mu.RLock()
	session := s.session
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(session, session.Authenticated())
	}
}

// write persists the state file; caller holds the lock.
func (s *Store) write(state stateFile) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("authstore: encode state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("authstore: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("authstore: write %s: %w", s.path, err)
	}
	return nil
}
