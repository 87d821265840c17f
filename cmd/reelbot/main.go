package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"reelbot/internal/config"
)

var (
	version = "0.1.0"

	configPath  string
	envFilePath string

	cfg        *config.Config
	logger     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	closeLog   = func() error { return nil }
	skipConfig = map[string]bool{"version": true, "help": true, "doctor": true}
)

func main() {
	root := &cobra.Command{
		Use:           "reelbot",
		Short:         "reelbot: Telegram bot that returns direct video links",
		Long:          "reelbot answers Instagram reel, story and post links and YouTube shorts with the direct video URL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}
			return setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (optional)")
	root.PersistentFlags().StringVar(&envFilePath, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(pollCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(setWebhookCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(configCmd())
	root.AddCommand(installServiceCmd())
	root.AddCommand(uninstallServiceCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads .env and the config, then replaces the bootstrap logger.
func setup() error {
	if err := config.LoadDotEnv(envFilePath); err != nil {
		return err
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, closer, err := newLogger(c.Log)
	if err != nil {
		return err
	}
	cfg, logger, closeLog = c, l, closer
	slog.SetDefault(logger)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("reelbot", version)
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Dump(cfg)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
