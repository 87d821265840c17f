package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	healthText      = "Bot is running. Use /set_webhook to initialize."
	maxUpdateBytes  = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// UpdateSink processes a decoded Telegram update.
type UpdateSink interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update, h MessageHandler)
}

// WebhookRegistrar registers the public webhook URL with Telegram.
type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, url string) error
}

// WebhookConfig configures the webhook HTTP server.
type WebhookConfig struct {
	Addr       string // listen address, default :8080
	Token      string // updates are accepted only on /<Token>
	WebhookURL string // public base URL; empty disables /set_webhook
	Sink       UpdateSink
	Registrar  WebhookRegistrar
	Handler    MessageHandler
	Metrics    http.Handler // nil disables /metrics
	Logger     *slog.Logger
}

// Webhook serves Telegram updates pushed over HTTP.
type Webhook struct {
	cfg    WebhookConfig
	logger *slog.Logger
	server *http.Server
}

func NewWebhook(cfg WebhookConfig) *Webhook {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	w := &Webhook{cfg: cfg, logger: cfg.Logger}
	w.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           w.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return w
}

// FullWebhookURL is the URL Telegram should push updates to.
func FullWebhookURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/" + token
}

// Routes returns the server's handler.
func (w *Webhook) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", w.handleIndex)
	mux.HandleFunc("/set_webhook", w.handleSetWebhook)
	if w.cfg.Metrics != nil {
		mux.Handle("/metrics", w.cfg.Metrics)
	}
	return mux
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (w *Webhook) Run(ctx context.Context) error {
	w.logger.Info("webhook server starting", "addr", w.cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return w.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

// handleIndex covers "/" itself, the token path, and 404 for the rest.
func (w *Webhook) handleIndex(rw http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/":
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeText(rw, http.StatusOK, healthText)
	case w.cfg.Token != "" && r.URL.Path == "/"+w.cfg.Token:
		w.handleUpdate(rw, r)
	default:
		http.NotFound(rw, r)
	}
}

func (w *Webhook) handleUpdate(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBytes))
	if err != nil {
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		w.logger.Warn("invalid update payload", "err", err, "bytes", len(body))
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	w.logger.Debug("webhook update received", "update_id", update.UpdateID)
	w.cfg.Sink.HandleUpdate(r.Context(), update, w.cfg.Handler)
	writeText(rw, http.StatusOK, "ok")
}

func (w *Webhook) handleSetWebhook(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if w.cfg.WebhookURL == "" {
		writeText(rw, http.StatusOK, "Error: WEBHOOK_URL environment variable not set.")
		return
	}
	full := FullWebhookURL(w.cfg.WebhookURL, w.cfg.Token)
	if err := w.cfg.Registrar.SetWebhook(r.Context(), full); err != nil {
		w.logger.Error("set webhook", "err", err)
		http.Error(rw, "Failed to set webhook", http.StatusBadGateway)
		return
	}
	writeText(rw, http.StatusOK, "Webhook set successfully to "+full)
}

func writeText(rw http.ResponseWriter, status int, text string) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(status)
	_, _ = io.WriteString(rw, text)
}
