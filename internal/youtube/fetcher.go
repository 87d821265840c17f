package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/tidwall/gjson"
)

const DefaultFormat = "best"

// Metadata is the part of yt-dlp's info dict the bot reads.
type Metadata struct {
	ID        string
	Title     string
	Extractor string
	URL       string // direct media URL of the selected format
}

// Fetcher resolves a page URL into media metadata without downloading.
type Fetcher interface {
	FetchMetadata(ctx context.Context, url string) (*Metadata, error)
}

// DownloadError is yt-dlp refusing the video itself: private, removed,
// region blocked, age gated.
type DownloadError struct {
	Message string
}

func (e *DownloadError) Error() string { return "yt-dlp: " + e.Message }

// FetcherConfig configures YTDLPFetcher.
type FetcherConfig struct {
	Executable string // empty uses yt-dlp from PATH
	Format     string
	Cookies    string // optional Netscape cookie file
	Logger     *slog.Logger
}

// YTDLPFetcher runs yt-dlp in single-JSON mode for one video, never a
// playlist.
type YTDLPFetcher struct {
	executable string
	format     string
	cookies    string
	logger     *slog.Logger
}

var _ Fetcher = (*YTDLPFetcher)(nil)

func NewYTDLPFetcher(cfg FetcherConfig) *YTDLPFetcher {
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &YTDLPFetcher{
		executable: cfg.Executable,
		format:     cfg.Format,
		cookies:    cfg.Cookies,
		logger:     cfg.Logger,
	}
}

func (f *YTDLPFetcher) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Format(f.format).
		Quiet().
		NoWarnings().
		NoPlaylist().
		DumpSingleJSON()
	if f.executable != "" {
		cmd = cmd.SetExecutable(f.executable)
	}
	if f.cookies != "" {
		cmd = cmd.Cookies(f.cookies)
	}
	return cmd
}

// FetchMetadata implements Fetcher.
func (f *YTDLPFetcher) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	result, err := f.command().Run(ctx, url)

	var stderr string
	exitCode := 0
	if result != nil {
		stderr = result.Stderr
		exitCode = result.ExitCode
	}
	if err != nil || exitCode != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
		}
		f.logger.Debug("yt-dlp failed", "url", url, "exit_code", exitCode, "stderr", stderr)
		return nil, classifyFailure(stderr, exitCode, err)
	}
	return parseMetadata(result.Stdout)
}

// classifyFailure turns a failed yt-dlp run into a DownloadError when
// yt-dlp itself reported an ERROR line, and a plain error otherwise
// (missing binary, killed process).
func classifyFailure(stderr string, exitCode int, runErr error) error {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if msg, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return &DownloadError{Message: strings.TrimSpace(msg)}
		}
	}
	if runErr != nil {
		return fmt.Errorf("run yt-dlp: %w", runErr)
	}
	return fmt.Errorf("yt-dlp exited with code %d", exitCode)
}

var errNotJSON = errors.New("yt-dlp output is not JSON")

func parseMetadata(stdout string) (*Metadata, error) {
	stdout = strings.TrimSpace(stdout)
	if !gjson.Valid(stdout) {
		return nil, errNotJSON
	}
	info := gjson.Parse(stdout)
	return &Metadata{
		ID:        info.Get("id").String(),
		Title:     info.Get("title").String(),
		Extractor: info.Get("extractor").String(),
		URL:       info.Get("url").String(),
	}, nil
}
