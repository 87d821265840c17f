package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"reelbot/internal/config"
	"reelbot/internal/instagram"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadSession_FromCookieValue(t *testing.T) {
	s := loadSession(config.InstagramConfig{Username: "u", SessionID: "sessionid=abc; csrftoken=x"}, discardLogger())
	if !s.Valid() || s.SessionID != "abc" || s.CSRFToken != "x" {
		t.Errorf("session = %+v", s)
	}
}

func TestLoadSession_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := instagram.SaveSession(path, &instagram.Session{Username: "u", SessionID: "abc"}); err != nil {
		t.Fatal(err)
	}
	s := loadSession(config.InstagramConfig{Username: "u", SessionFile: path}, discardLogger())
	if !s.Valid() || s.SessionID != "abc" {
		t.Errorf("session = %+v", s)
	}
}

func TestLoadSession_MissingFileRunsAnonymously(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	if s := loadSession(config.InstagramConfig{SessionFile: path}, discardLogger()); s != nil {
		t.Errorf("session = %+v, want nil", s)
	}
	if s := loadSession(config.InstagramConfig{}, discardLogger()); s != nil {
		t.Errorf("session = %+v, want nil", s)
	}
}
