// Package bot routes incoming messages to a platform adapter and replies
// with the extracted video or an explanation.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"reelbot/internal/domain"
	"reelbot/internal/link"
	"reelbot/internal/metrics"
)

var tracer = otel.Tracer("reelbot/bot")

// HandlerConfig configures Handler.
type HandlerConfig struct {
	Messenger  domain.Messenger
	Extractors map[domain.PlatformKind]domain.Extractor
	Replies    Replies
	Metrics    *metrics.Collector // nil disables
	Logger     *slog.Logger
}

// Handler processes one message at a time. It holds no per-request state,
// so concurrent calls are independent.
type Handler struct {
	messenger  domain.Messenger
	extractors map[domain.PlatformKind]domain.Extractor
	replies    Replies
	metrics    *metrics.Collector
	logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		messenger:  cfg.Messenger,
		extractors: cfg.Extractors,
		replies:    cfg.Replies,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Handle answers msg. The returned error is a delivery failure only;
// extraction failures are always turned into a text reply.
func (h *Handler) Handle(ctx context.Context, msg domain.IncomingMessage) (err error) {
	logger := h.logger.With("request_id", uuid.NewString(), "chat_id", msg.ChatID)
	ctx, span := tracer.Start(ctx, "bot.handle")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in message handler", "recover", r)
			span.SetStatus(codes.Error, "panic")
			err = h.messenger.SendText(ctx, msg.ChatID, h.replies.Failure)
		}
	}()

	if msg.IsCommand() {
		return h.handleCommand(ctx, msg)
	}

	text := strings.TrimSpace(msg.Text)
	kind := link.Classify(text)
	span.SetAttributes(attribute.String("platform", kind.String()))
	ex, ok := h.extractors[kind]
	if kind == domain.Unrecognized || !ok {
		if kind != domain.Unrecognized {
			logger.Warn("no extractor configured", "platform", kind)
		}
		return h.deliver(ctx, msg.ChatID, h.replies.UnrecognizedReply())
	}
	if h.metrics != nil {
		h.metrics.RecordMessage(kind.String())
	}
	logger.Info("link received", "platform", kind, "text_len", len(text))

	if h.replies.Wait != "" {
		if err := h.messenger.SendText(ctx, msg.ChatID, h.replies.Wait); err != nil {
			logger.Warn("send wait message", "err", err)
		}
	}

	start := time.Now()
	res := ex.Extract(ctx, text)
	took := time.Since(start)
	if h.metrics != nil {
		h.metrics.RecordExtraction(kind.String(), res.Kind.String(), took)
	}
	span.SetAttributes(attribute.String("result", res.Kind.String()))

	switch res.Kind {
	case domain.ResultOK:
		logger.Info("video resolved", "platform", kind, "took", took)
	case domain.ResultUnknown:
		logger.Error("extraction failed", "platform", kind, "detail", res.Detail, "took", took)
	default:
		logger.Info("extraction declined", "platform", kind, "result", res.Kind, "took", took)
	}

	if err := h.deliver(ctx, msg.ChatID, h.replies.For(res)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (h *Handler) handleCommand(ctx context.Context, msg domain.IncomingMessage) error {
	switch msg.Command {
	case "start":
		return h.deliver(ctx, msg.ChatID, Reply{Action: ActionText, Text: h.replies.Greeting})
	case "help":
		return h.deliver(ctx, msg.ChatID, Reply{Action: ActionText, Text: h.replies.Help})
	default:
		return nil
	}
}

func (h *Handler) deliver(ctx context.Context, chatID int64, reply Reply) error {
	if err := Deliver(ctx, h.messenger, chatID, reply); err != nil {
		return fmt.Errorf("deliver reply to chat %d: %w", chatID, err)
	}
	return nil
}
