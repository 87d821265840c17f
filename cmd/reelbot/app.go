package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lrstanley/go-ytdlp"

	"reelbot/internal/bot"
	"reelbot/internal/channel"
	"reelbot/internal/config"
	"reelbot/internal/domain"
	"reelbot/internal/httpclient"
	"reelbot/internal/instagram"
	"reelbot/internal/metrics"
	"reelbot/internal/tracing"
	"reelbot/internal/youtube"
)

// loadSession resolves the Instagram session once at startup. A missing
// session is not fatal; only public reels and posts resolve without one.
func loadSession(c config.InstagramConfig, logger *slog.Logger) *instagram.Session {
	if c.SessionID != "" {
		return instagram.SessionFromCookieHeader(c.Username, c.SessionID)
	}
	path := c.SessionFile
	if path == "" && c.Username != "" {
		path = instagram.DefaultSessionPath(c.Username)
	}
	if path == "" {
		logger.Warn("no instagram session configured, running anonymously")
		return nil
	}
	s, err := instagram.LoadSession(path)
	if err != nil {
		if errors.Is(err, instagram.ErrNoSession) {
			logger.Warn("instagram session file not found, running anonymously", "path", path)
		} else {
			logger.Warn("instagram session unusable, running anonymously", "err", err)
		}
		return nil
	}
	logger.Info("instagram session loaded", "username", s.Username, "path", path)
	return s
}

func newExtractors(ctx context.Context, c *config.Config, logger *slog.Logger) (map[domain.PlatformKind]domain.Extractor, error) {
	if c.YouTube.AutoInstall && c.YouTube.Executable == "" {
		logger.Info("ensuring yt-dlp is installed")
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			return nil, fmt.Errorf("install yt-dlp: %w", err)
		}
	}

	igClient := instagram.NewClient(instagram.ClientConfig{
		BaseURL:    c.Instagram.BaseURL,
		PublicURL:  c.Instagram.PublicURL,
		Session:    loadSession(c.Instagram, logger),
		HTTPClient: httpclient.New(c.Instagram.Timeout()),
		Logger:     logger.With("component", "instagram"),
	})
	fetcher := youtube.NewYTDLPFetcher(youtube.FetcherConfig{
		Executable: c.YouTube.Executable,
		Format:     c.YouTube.Format,
		Cookies:    c.YouTube.Cookies,
		Logger:     logger.With("component", "youtube"),
	})

	return map[domain.PlatformKind]domain.Extractor{
		domain.Instagram: instagram.NewExtractor(igClient, logger.With("component", "instagram")),
		domain.YouTube:   youtube.NewExtractor(fetcher, logger.With("component", "youtube")),
	}, nil
}

func newTelegram(c *config.Config, logger *slog.Logger) (*channel.Telegram, error) {
	if err := c.RequireTelegram(); err != nil {
		return nil, err
	}
	return channel.NewTelegram(channel.TelegramConfig{
		Token:       c.Telegram.Token,
		APIEndpoint: c.Telegram.APIEndpoint,
		HTTPClient:  httpclient.New(c.Telegram.Timeout(), httpclient.UserAgent("reelbot/"+version)),
		PollTimeout: c.Telegram.PollTimeout(),
		Logger:      logger.With("component", "telegram"),
	})
}

// app is everything poll and serve share.
type app struct {
	telegram *channel.Telegram
	handler  *bot.Handler
	shutdown tracing.Shutdown
}

func newApp(ctx context.Context, c *config.Config, logger *slog.Logger) (*app, error) {
	_, shutdown, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:    c.Tracing.Endpoint,
		Insecure:    c.Tracing.Insecure,
		Headers:     c.Tracing.Headers,
		ServiceName: c.Tracing.ServiceName,
	})
	if err != nil {
		return nil, err
	}

	tg, err := newTelegram(c, logger)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, err
	}
	extractors, err := newExtractors(ctx, c, logger)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, err
	}

	h := bot.NewHandler(bot.HandlerConfig{
		Messenger:  tg,
		Extractors: extractors,
		Replies:    c.Messages.Replies(),
		Metrics:    metrics.Default,
		Logger:     logger.With("component", "bot"),
	})
	return &app{telegram: tg, handler: h, shutdown: shutdown}, nil
}

func (r *app) close(logger *slog.Logger) {
	if err := r.shutdown(context.Background()); err != nil {
		logger.Warn("tracer shutdown", "err", err)
	}
}
