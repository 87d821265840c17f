package instagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Session holds the cookies of a logged-in Instagram web session. It is
// loaded once at startup and never mutated afterwards, so the same value
// is shared by every request without locking.
type Session struct {
	Username  string `json:"username"`
	SessionID string `json:"sessionid"`
	CSRFToken string `json:"csrftoken,omitempty"`
	UserID    string `json:"ds_user_id,omitempty"`
}

// ErrNoSession is returned by LoadSession when the session file is absent.
var ErrNoSession = errors.New("instagram session not found")

// Valid reports whether the session can authenticate requests.
func (s *Session) Valid() bool {
	return s != nil && s.SessionID != ""
}

func (s *Session) cookies() []*http.Cookie {
	if !s.Valid() {
		return nil
	}
	cs := []*http.Cookie{{Name: "sessionid", Value: s.SessionID}}
	if s.CSRFToken != "" {
		cs = append(cs, &http.Cookie{Name: "csrftoken", Value: s.CSRFToken})
	}
	if s.UserID != "" {
		cs = append(cs, &http.Cookie{Name: "ds_user_id", Value: s.UserID})
	}
	return cs
}

// DefaultSessionPath is where the login command stores the session for
// username.
func DefaultSessionPath(username string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".reelbot", "session-"+username+".json")
}

// LoadSession reads a session file written by SaveSession.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSession, path)
		}
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("session %s has no sessionid cookie", path)
	}
	return &s, nil
}

// SaveSession writes s to path with owner-only permissions.
func SaveSession(path string, s *Session) error {
	if !s.Valid() {
		return errors.New("refusing to save session without sessionid")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// SessionFromCookieHeader builds a session from a raw sessionid value or a
// "name=value; name=value" cookie string copied from a browser.
func SessionFromCookieHeader(username, raw string) *Session {
	s := &Session{Username: username}
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "=") {
		s.SessionID = raw
		return s
	}
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch name {
		case "sessionid":
			s.SessionID = value
		case "csrftoken":
			s.CSRFToken = value
		case "ds_user_id":
			s.UserID = value
		}
	}
	return s
}
