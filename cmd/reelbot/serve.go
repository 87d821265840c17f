package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelbot/internal/channel"
	"reelbot/internal/metrics"
)

func serveCmd() *cobra.Command {
	var register bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook HTTP server",
		Long: `Serves POST /<token> for Telegram updates, GET / as a health check,
/set_webhook to register WEBHOOK_URL with Telegram, and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close(logger)

			if register {
				if err := cfg.RequireWebhookURL(); err != nil {
					return err
				}
				if err := rt.telegram.SetWebhook(ctx, channel.FullWebhookURL(cfg.Server.WebhookURL, cfg.Telegram.Token)); err != nil {
					return err
				}
			}

			var metricsHandler http.Handler
			if cfg.Server.Metrics {
				metricsHandler = metrics.Default.Handler()
			}
			srv := channel.NewWebhook(channel.WebhookConfig{
				Addr:       cfg.Server.ListenAddr,
				Token:      cfg.Telegram.Token,
				WebhookURL: cfg.Server.WebhookURL,
				Sink:       rt.telegram,
				Registrar:  rt.telegram,
				Handler:    rt.handler,
				Metrics:    metricsHandler,
				Logger:     logger.With("component", "webhook"),
			})

			logger.Info("reelbot started", "mode", "webhook", "version", version, "bot", rt.telegram.Username())
			return srv.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&register, "set-webhook", false, "register WEBHOOK_URL with Telegram before serving")
	return cmd
}

func setWebhookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-webhook",
		Short: "Register <WEBHOOK_URL>/<token> with Telegram and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireWebhookURL(); err != nil {
				return err
			}
			tg, err := newTelegram(cfg, logger)
			if err != nil {
				return err
			}
			full := channel.FullWebhookURL(cfg.Server.WebhookURL, cfg.Telegram.Token)
			if err := tg.SetWebhook(cmd.Context(), full); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook set successfully to", full)
			return nil
		},
	}
}
