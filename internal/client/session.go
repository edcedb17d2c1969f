package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Session is the logged-in identity persisted between runs.
type Session struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
}

// SessionStore keeps the session in a YAML file readable only by the owner.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/taskdeck/session.yaml.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskdeck", "session.yaml"), nil
}

func (s *SessionStore) Path() string { return s.path }

// Load returns ErrNotAuthenticated when nothing is stored.
func (s *SessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := yaml.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if sess.Token == "" {
		return nil, ErrNotAuthenticated
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := yaml.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Clear removes the stored session; a missing file is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
