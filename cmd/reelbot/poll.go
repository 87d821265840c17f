package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run the bot with Telegram long polling",
		Long:  "Removes any registered webhook and long-polls getUpdates until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close(logger)

			logger.Info("reelbot started", "mode", "poll", "version", version, "bot", rt.telegram.Username())
			return rt.telegram.Poll(ctx, rt.handler)
		},
	}
}
