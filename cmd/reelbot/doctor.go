package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"

	"reelbot/internal/config"
	"reelbot/internal/instagram"
)

type checkCounts struct {
	passed, warned, failed int
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on the reelbot setup",
		Long: `Verifies configuration, Telegram token, yt-dlp, the Instagram session
and the listen address. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reelbot doctor v%s\n", version)
			fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
			var n checkCounts

			if err := config.LoadDotEnv(envFilePath); err != nil {
				n.fail(out, ".env", err.Error())
			}
			c, err := config.Load(configPath)
			if err != nil {
				n.fail(out, "Config", err.Error())
				return n.summary(out)
			}
			n.pass(out, "Config", "valid")

			if err := c.RequireTelegram(); err != nil {
				n.fail(out, "Telegram token", err.Error())
			} else if tg, err := newTelegram(c, logger); err != nil {
				n.fail(out, "Telegram token", err.Error())
			} else {
				n.pass(out, "Telegram token", "@"+tg.Username())
			}

			if c.Server.WebhookURL == "" {
				n.warn(out, "Webhook URL", "not set (poll mode only)")
			} else {
				n.pass(out, "Webhook URL", c.Server.WebhookURL)
			}
			if err := checkListen(c.Server.ListenAddr); err != nil {
				n.warn(out, "Listen address", fmt.Sprintf("%s may be in use: %v", c.Server.ListenAddr, err))
			} else {
				n.pass(out, "Listen address", c.Server.ListenAddr+" available")
			}

			switch found, err := resolveYTDLP(c.YouTube.Executable); {
			case err == nil:
				n.pass(out, "yt-dlp", found)
			case c.YouTube.AutoInstall && c.YouTube.Executable == "":
				n.warn(out, "yt-dlp", "not found, will be installed on start")
			default:
				n.fail(out, "yt-dlp", fmt.Sprintf("%v; install it or set YTDLP_AUTO_INSTALL=true", err))
			}

			sessionDetail, sessionOK := describeSession(c.Instagram)
			if sessionOK {
				n.pass(out, "Instagram session", sessionDetail)
			} else {
				n.warn(out, "Instagram session", sessionDetail)
			}

			if c.Log.File != "" {
				if err := os.MkdirAll(filepath.Dir(c.Log.File), 0o755); err != nil {
					n.warn(out, "Log file", fmt.Sprintf("cannot create log directory: %v", err))
				} else {
					n.pass(out, "Log file", c.Log.File)
				}
			}
			if c.Tracing.Endpoint != "" {
				n.pass(out, "Tracing", "exporting to "+c.Tracing.Endpoint)
			}

			return n.summary(out)
		},
	}
}

// resolveYTDLP finds the binary a fetch would run. Without a configured
// executable go-ytdlp looks in its install cache before PATH.
func resolveYTDLP(executable string) (string, error) {
	if executable != "" {
		return exec.LookPath(executable)
	}
	names := []string{"yt-dlp-" + ytdlp.Version, "yt-dlp"}
	if runtime.GOOS == "windows" {
		names = []string{"yt-dlp-" + ytdlp.Version + ".exe", "yt-dlp.exe"}
	}
	if dir, err := ytdlp.GetCacheDir(); err == nil {
		for _, name := range names {
			p := filepath.Join(dir, name)
			if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() && (runtime.GOOS == "windows" || st.Mode().Perm()&0o111 != 0) {
				return p, nil
			}
		}
	}
	for _, name := range names {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.New("yt-dlp not found in the go-ytdlp cache or PATH")
}

func describeSession(c config.InstagramConfig) (string, bool) {
	if c.SessionID != "" {
		return "from INSTAGRAM_SESSIONID", true
	}
	path := c.SessionFile
	if path == "" && c.Username != "" {
		path = instagram.DefaultSessionPath(c.Username)
	}
	if path == "" {
		return "none configured; stories and private posts will need login", false
	}
	s, err := instagram.LoadSession(path)
	if err != nil {
		return fmt.Sprintf("%v; run 'reelbot login'", err), false
	}
	return fmt.Sprintf("%s (%s)", path, s.Username), true
}

func checkListen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}

func (n *checkCounts) pass(w io.Writer, check, detail string) {
	n.passed++
	fmt.Fprintf(w, "  [PASS] %-20s %s\n", check, detail)
}

func (n *checkCounts) warn(w io.Writer, check, detail string) {
	n.warned++
	fmt.Fprintf(w, "  [WARN] %-20s %s\n", check, detail)
}

func (n *checkCounts) fail(w io.Writer, check, detail string) {
	n.failed++
	fmt.Fprintf(w, "  [FAIL] %-20s %s\n", check, detail)
}

func (n *checkCounts) summary(w io.Writer) error {
	fmt.Fprintf(w, "\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", n.passed, n.warned, n.failed)
	if n.failed > 0 {
		return fmt.Errorf("%d check(s) failed", n.failed)
	}
	if n.warned == 0 {
		fmt.Fprintf(w, "\nAll checks passed. reelbot is ready to run.\n")
	}
	return nil
}
