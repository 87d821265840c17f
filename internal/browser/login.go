// Package browser drives a visible Chrome window through an Instagram
// login and captures the resulting session cookies.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"reelbot/internal/instagram"
)

const (
	loginURL       = "https://www.instagram.com/accounts/login/"
	defaultTimeout = 5 * time.Minute
	pollInterval   = 2 * time.Second
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// ErrLoginTimeout means no sessionid cookie appeared before the deadline.
var ErrLoginTimeout = errors.New("instagram login not completed before timeout")

type LoginConfig struct {
	ProfileDir string        // Chrome user data directory, reused across logins
	Timeout    time.Duration // how long to wait for the user to finish
	Logger     *slog.Logger
}

// Login opens Instagram's login page and waits for the user to sign in.
type Login struct {
	profileDir string
	timeout    time.Duration
	logger     *slog.Logger
}

func NewLogin(cfg LoginConfig) *Login {
	if cfg.ProfileDir == "" {
		home, _ := os.UserHomeDir()
		cfg.ProfileDir = filepath.Join(home, ".reelbot", "chrome-profile")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Login{profileDir: cfg.ProfileDir, timeout: cfg.Timeout, logger: cfg.Logger}
}

// Capture blocks until the browser holds a sessionid cookie, the timeout
// passes, or ctx is cancelled.
func (l *Login) Capture(ctx context.Context, username string) (*instagram.Session, error) {
	if err := os.MkdirAll(l.profileDir, 0o700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(l.profileDir),
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	if err := chromedp.Run(taskCtx, chromedp.Navigate(loginURL)); err != nil {
		return nil, fmt.Errorf("navigate to login page: %w", err)
	}
	l.logger.Info("browser opened, log in to Instagram in the window", "timeout", l.timeout)

	deadline := time.NewTimer(l.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrLoginTimeout
		case <-ticker.C:
			var cookies []*network.Cookie
			err := chromedp.Run(taskCtx, chromedp.ActionFunc(func(ctx context.Context) error {
				var err error
				cookies, err = network.GetCookies().Do(ctx)
				return err
			}))
			if err != nil {
				l.logger.Debug("read browser cookies", "err", err)
				continue
			}
			if s := sessionFromCookies(username, cookies); s.Valid() {
				l.logger.Info("instagram session captured", "user_id", s.UserID)
				return s, nil
			}
		}
	}
}

func sessionFromCookies(username string, cookies []*network.Cookie) *instagram.Session {
	s := &instagram.Session{Username: username}
	for _, c := range cookies {
		if c == nil {
			continue
		}
		switch c.Name {
		case "sessionid":
			s.SessionID = c.Value
		case "csrftoken":
			s.CSRFToken = c.Value
		case "ds_user_id":
			s.UserID = c.Value
		}
	}
	return s
}
