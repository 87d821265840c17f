// Package config loads reelbot settings: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"reelbot/internal/bot"
)

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Server    ServerConfig    `yaml:"server"`
	Instagram InstagramConfig `yaml:"instagram"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Messages  MessagesConfig  `yaml:"messages"`
}

type TelegramConfig struct {
	Token              string `yaml:"token" env:"TELEGRAM_TOKEN"`
	APIEndpoint        string `yaml:"apiEndpoint,omitempty" env:"TELEGRAM_API_ENDPOINT"`
	TimeoutSeconds     int    `yaml:"timeoutSeconds" env:"TELEGRAM_TIMEOUT"`
	PollTimeoutSeconds int    `yaml:"pollTimeoutSeconds" env:"TELEGRAM_POLL_TIMEOUT"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr" env:"LISTEN_ADDR"`
	WebhookURL string `yaml:"webhookURL" env:"WEBHOOK_URL"` // public base URL, token is appended
	Metrics    bool   `yaml:"metrics" env:"METRICS_ENABLED"`
}

type InstagramConfig struct {
	Username       string `yaml:"username" env:"INSTAGRAM_USERNAME"`
	SessionID      string `yaml:"sessionID,omitempty" env:"INSTAGRAM_SESSIONID"` // raw cookie value or full Cookie header
	SessionFile    string `yaml:"sessionFile,omitempty" env:"INSTAGRAM_SESSION_FILE"`
	BaseURL        string `yaml:"baseURL,omitempty" env:"INSTAGRAM_BASE_URL"`
	PublicURL      string `yaml:"publicURL,omitempty" env:"INSTAGRAM_PUBLIC_URL"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" env:"INSTAGRAM_TIMEOUT"`
}

type YouTubeConfig struct {
	Executable  string `yaml:"executable,omitempty" env:"YTDLP_PATH"`
	Cookies     string `yaml:"cookies,omitempty" env:"YTDLP_COOKIES"`
	Format      string `yaml:"format" env:"YTDLP_FORMAT"`
	AutoInstall bool   `yaml:"autoInstall" env:"YTDLP_AUTO_INSTALL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // text | json
	File   string `yaml:"file,omitempty" env:"LOG_FILE"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_ENDPOINT"` // empty disables export
	Insecure    bool   `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	Headers     string `yaml:"headers,omitempty" env:"OTEL_EXPORTER_OTLP_HEADERS"` // k=v,k2=v2
	ServiceName string `yaml:"serviceName" env:"OTEL_SERVICE_NAME"`
}

// MessagesConfig is the user-facing wording. Only Wait may be empty.
type MessagesConfig struct {
	Greeting     string `yaml:"greeting"`
	Help         string `yaml:"help"`
	Wait         string `yaml:"wait"`
	Unrecognized string `yaml:"unrecognized"`
	Success      string `yaml:"success"`
	NotFound     string `yaml:"notFound"`
	AuthRequired string `yaml:"authRequired"`
	Private      string `yaml:"private"`
	RateLimited  string `yaml:"rateLimited"`
	Unavailable  string `yaml:"unavailable"`
	Failure      string `yaml:"failure"`
}

func Defaults() *Config {
	r := bot.DefaultReplies()
	return &Config{
		Telegram: TelegramConfig{
			TimeoutSeconds:     60,
			PollTimeoutSeconds: 25,
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
			Metrics:    true,
		},
		Instagram: InstagramConfig{
			TimeoutSeconds: 30,
		},
		YouTube: YouTubeConfig{
			Format: "best",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			ServiceName: "reelbot",
		},
		Messages: MessagesConfig{
			Greeting:     r.Greeting,
			Help:         r.Help,
			Wait:         r.Wait,
			Unrecognized: r.Unrecognized,
			Success:      r.Success,
			NotFound:     r.NotFound,
			AuthRequired: r.AuthRequired,
			Private:      r.Private,
			RateLimited:  r.RateLimited,
			Unavailable:  r.Unavailable,
			Failure:      r.Failure,
		},
	}
}

// Replies converts the configured wording for the bot handler.
func (m MessagesConfig) Replies() bot.Replies {
	return bot.Replies{
		Greeting:     m.Greeting,
		Help:         m.Help,
		Wait:         m.Wait,
		Unrecognized: m.Unrecognized,
		Success:      m.Success,
		NotFound:     m.NotFound,
		AuthRequired: m.AuthRequired,
		Private:      m.Private,
		RateLimited:  m.RateLimited,
		Unavailable:  m.Unavailable,
		Failure:      m.Failure,
	}
}

func (c TelegramConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c TelegramConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

func (c InstagramConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		path = ExpandPath(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
		data = []byte(ExpandEnvVars(string(data)))
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	cfg.Instagram.SessionFile = ExpandPath(cfg.Instagram.SessionFile)
	cfg.YouTube.Cookies = ExpandPath(cfg.YouTube.Cookies)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars substitutes ${VAR} with its value. ${VAR:-default} falls
// back to default when VAR is unset or empty; a bare ${VAR} that is unset
// is left as written.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(m string) string {
		groups := envVarPattern.FindStringSubmatch(m)
		if len(groups) < 2 {
			return m
		}
		fallback, hasFallback := "", len(groups) >= 3 && groups[2] != ""
		if hasFallback {
			fallback = groups[2]
		}
		if val, ok := os.LookupEnv(groups[1]); ok && val != "" {
			return val
		}
		if hasFallback {
			return fallback
		}
		return m
	})
}

// Validate checks value ranges. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log.level must be one of: debug, info, warn, error")
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, "log.format must be one of: text, json")
	}

	if cfg.Telegram.TimeoutSeconds < 1 {
		errs = append(errs, "telegram.timeoutSeconds must be >= 1")
	}
	if cfg.Telegram.PollTimeoutSeconds < 1 || cfg.Telegram.PollTimeoutSeconds >= cfg.Telegram.TimeoutSeconds {
		errs = append(errs, "telegram.pollTimeoutSeconds must be >= 1 and below telegram.timeoutSeconds")
	}
	if cfg.Instagram.TimeoutSeconds < 1 {
		errs = append(errs, "instagram.timeoutSeconds must be >= 1")
	}

	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddr); err != nil {
		errs = append(errs, fmt.Sprintf("server.listenAddr %q is not host:port", cfg.Server.ListenAddr))
	}
	if cfg.Server.WebhookURL != "" {
		u, err := url.Parse(cfg.Server.WebhookURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, "server.webhookURL must be an absolute https URL")
		}
	}
	for name, v := range map[string]string{"baseURL": cfg.Instagram.BaseURL, "publicURL": cfg.Instagram.PublicURL} {
		if v == "" {
			continue
		}
		if u, err := url.Parse(v); err != nil || u.Host == "" {
			errs = append(errs, fmt.Sprintf("instagram.%s must be an absolute URL", name))
		}
	}

	m := cfg.Messages
	for name, v := range map[string]string{
		"greeting": m.Greeting, "help": m.Help, "unrecognized": m.Unrecognized,
		"success": m.Success, "notFound": m.NotFound, "authRequired": m.AuthRequired,
		"private": m.Private, "rateLimited": m.RateLimited, "unavailable": m.Unavailable,
		"failure": m.Failure,
	} {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Sprintf("messages.%s must not be empty", name))
		}
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RequireTelegram reports a missing bot token.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is not set")
	}
	return nil
}

// RequireWebhookURL reports a missing public webhook URL.
func (c *Config) RequireWebhookURL() error {
	if c.Server.WebhookURL == "" {
		return errors.New("WEBHOOK_URL is not set")
	}
	return nil
}

// ExpandPath resolves a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
