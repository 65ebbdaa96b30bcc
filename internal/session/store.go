// Package session persists the logged-in user across runs as a single JSON
// blob. Malformed or missing state reads as absent and forces the login flow;
// it never crashes the app.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"slackline/internal/api"
)

// Session is the persisted identity: the trusted user object plus a
// client-generated id that survives restarts.
type Session struct {
	User      api.User `json:"user"`
	SessionID string   `json:"session_id"`
}

// Store reads and writes the session blob at a fixed path.
type Store struct {
	path string
}

// NewStore builds a store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted session. Missing file, unreadable file, or
// malformed JSON all report absent.
func (s *Store) Load() (Session, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, false
	}
	if sess.User.ID == 0 || sess.User.Username == "" {
		return Session{}, false
	}
	return sess, true
}

// Save persists the session, assigning a session id on first save.
func (s *Store) Save(sess Session) (Session, error) {
	if sess.SessionID == "" {
		sess.SessionID = uuid.NewString()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return sess, err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return sess, err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return sess, err
	}
	return sess, nil
}

// Clear removes the persisted session. Already-absent state is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
