package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artem13815/tasktracker/pkg/auth"
)

// ErrNoSession means nobody is logged in.
var ErrNoSession = errors.New(`not logged in, run "taskctl login" first`)

// StoredSession is the logged-in state kept between taskctl invocations.
type StoredSession struct {
	Server string          `json:"server"`
	Token  string          `json:"token"`
	User   auth.PublicUser `json:"user"`
}

// SessionFilePath honours TASKCTL_SESSION_FILE, then the user config dir.
func SessionFilePath() string {
	if p := os.Getenv("TASKCTL_SESSION_FILE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "taskctl-session.json")
	}
	return filepath.Join(dir, "taskctl", "session.json")
}

func LoadSession(path string) (*StoredSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	var s StoredSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// SaveSession writes the file with owner-only permissions; it holds a token.
func SaveSession(path string, s *StoredSession) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}

// ClearSession removes the file; a missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}
