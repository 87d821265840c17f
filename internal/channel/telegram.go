// Package channel connects the bot Handler to Telegram, either by long
// polling or through an HTTP webhook server.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reelbot/internal/domain"
)

const (
	telegramMaxMsgLen      = 4000
	defaultPollTimeout     = 25 * time.Second
	defaultUpdateBufferLen = 100
)

// MessageHandler consumes one normalized incoming message.
type MessageHandler interface {
	Handle(ctx context.Context, msg domain.IncomingMessage) error
}

type TelegramConfig struct {
	Token       string
	APIEndpoint string // format string with token and method verbs; default tgbotapi.APIEndpoint
	HTTPClient  *http.Client
	PollTimeout time.Duration // long-poll wait, must stay below the client timeout
	Logger      *slog.Logger
}

// Telegram is both the inbound transport and the domain.Messenger.
type Telegram struct {
	bot         *tgbotapi.BotAPI
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewTelegram connects to the Bot API and verifies the token with getMe.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: token is required")
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = tgbotapi.APIEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: time.Minute}
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if ct := cfg.HTTPClient.Timeout; ct > 0 && cfg.PollTimeout >= ct {
		cfg.PollTimeout = ct / 2
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, cfg.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	cfg.Logger.Info("telegram bot connected", "username", bot.Self.UserName, "id", bot.Self.ID)

	return &Telegram{
		bot:         bot,
		pollTimeout: cfg.PollTimeout,
		logger:      cfg.Logger,
	}, nil
}

// Username is the bot's @handle as reported by getMe.
func (t *Telegram) Username() string { return t.bot.Self.UserName }

// Poll long-polls getUpdates until ctx is cancelled. Updates are handled
// one at a time in arrival order.
func (t *Telegram) Poll(ctx context.Context, h MessageHandler) error {
	if _, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		t.logger.Warn("delete webhook before polling", "err", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(t.pollTimeout.Seconds())
	t.bot.Buffer = defaultUpdateBufferLen
	updates := t.bot.GetUpdatesChan(u)
	t.logger.Info("telegram polling started", "timeout", t.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram polling stopping")
			// Calling this twice panics; Poll is the only caller.
			t.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.HandleUpdate(ctx, update, h)
		}
	}
}

// HandleUpdate normalizes update and passes it to h. Updates without a
// text message are dropped.
func (t *Telegram) HandleUpdate(ctx context.Context, update tgbotapi.Update, h MessageHandler) {
	msg, ok := incomingFromUpdate(update)
	if !ok {
		return
	}
	if err := h.Handle(ctx, msg); err != nil {
		t.logger.Error("handle telegram message", "chat_id", msg.ChatID, "update_id", update.UpdateID, "err", err)
	}
}

func incomingFromUpdate(update tgbotapi.Update) (domain.IncomingMessage, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return domain.IncomingMessage{}, false
	}
	msg := domain.IncomingMessage{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
		Command:   m.Command(),
		Timestamp: time.Unix(int64(m.Date), 0),
	}
	if m.From != nil {
		msg.SenderID = m.From.ID
		msg.Username = m.From.UserName
	}
	return msg, true
}

// SendText sends text, split into chunks under the Telegram length limit.
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, telegramMaxMsgLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("telegram sendMessage: %w", err)
		}
	}
	return nil
}

// SendVideo asks Telegram to fetch videoURL itself; nothing is downloaded
// locally.
func (t *Telegram) SendVideo(ctx context.Context, chatID int64, videoURL, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(videoURL))
	v.Caption = caption
	if _, err := t.bot.Send(v); err != nil {
		return fmt.Errorf("telegram sendVideo: %w", err)
	}
	return nil
}

// SetWebhook registers url as the update destination.
func (t *Telegram) SetWebhook(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if _, err := t.bot.Request(wh); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	t.logger.Info("telegram webhook registered", "host", wh.URL.Host)
	return nil
}

// splitMessage cuts text into chunks of at most maxLen bytes, preferring
// newline boundaries in the second half of a chunk.
func splitMessage(text string, maxLen int) []string {
	if text == "" {
		return []string{""}
	}
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}
		cutAt := strings.LastIndex(text[:maxLen], "\n")
		if cutAt < maxLen/2 {
			cutAt = maxLen
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}
