package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelbot/internal/browser"
	"reelbot/internal/instagram"
)

func loginCmd() *cobra.Command {
	var (
		timeout    time.Duration
		profileDir string
	)
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in to Instagram in a browser window and save the session",
		Long: `Opens a visible Chrome window at the Instagram login page. Once the
sessionid cookie appears it is written to the session file used by poll and serve.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := cfg.Instagram.Username
			if len(args) == 1 {
				username = args[0]
			}
			if username == "" {
				return errors.New("username required: pass it as an argument or set INSTAGRAM_USERNAME")
			}
			path := cfg.Instagram.SessionFile
			if path == "" {
				path = instagram.DefaultSessionPath(username)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			l := browser.NewLogin(browser.LoginConfig{
				ProfileDir: profileDir,
				Timeout:    timeout,
				Logger:     logger.With("component", "browser"),
			})
			s, err := l.Capture(ctx, username)
			if err != nil {
				return fmt.Errorf("instagram login: %w", err)
			}
			if err := instagram.SaveSession(path, s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session saved to", path)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the login to finish")
	cmd.Flags().StringVar(&profileDir, "profile-dir", "", "Chrome profile directory (default ~/.reelbot/chrome-profile)")
	return cmd
}
