package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelbot/internal/domain"
	"reelbot/internal/link"
)

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [url]",
		Short: "Resolve one link from the terminal without Telegram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			kind := link.Classify(args[0])
			if kind == domain.Unrecognized {
				return fmt.Errorf("not an Instagram or YouTube link: %s", args[0])
			}
			extractors, err := newExtractors(ctx, cfg, logger)
			if err != nil {
				return err
			}

			res := extractors[kind].Extract(ctx, args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "platform: %s\nresult:   %s\n", kind, res.Kind)
			switch {
			case res.IsOK():
				fmt.Fprintf(out, "video:    %s\n", res.VideoURL)
			case res.Detail != "":
				fmt.Fprintf(out, "detail:   %s\n", res.Detail)
			}
			if !res.IsOK() {
				return fmt.Errorf("extraction failed: %s", res.Kind)
			}
			return nil
		},
	}
}
