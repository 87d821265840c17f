package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"
)

const (
	serviceName  = "reelbot"
	launchdLabel = "com.reelbot.bot"
)

type serviceUnit struct {
	Exec    string
	Mode    string // poll or serve
	Config  string
	EnvFile string
	Label   string
	Log     string
	ErrLog  string
}

func installServiceCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "install-service",
		Short: "Install reelbot as a user service (systemd or launchd)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "poll" && mode != "serve" {
				return fmt.Errorf("--mode must be poll or serve, got %q", mode)
			}
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("cannot determine executable path: %w", err)
			}
			envFile, _ := filepath.Abs(envFilePath)
			cfgFile := configPath
			if cfgFile != "" {
				cfgFile, _ = filepath.Abs(cfgFile)
			}
			unit := serviceUnit{Exec: execPath, Mode: mode, Config: cfgFile, EnvFile: envFile, Label: launchdLabel}

			path, body, err := renderService(runtime.GOOS, unit)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Service installed: %s\n", path)
			if runtime.GOOS == "darwin" {
				fmt.Fprintf(cmd.OutOrStdout(), "To start: launchctl load %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "To start: systemctl --user enable --now %s\n", serviceName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "poll", "how the service receives updates: poll or serve")
	return cmd
}

func uninstallServiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall-service",
		Short: "Remove the reelbot user service",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := servicePath(runtime.GOOS)
			if err != nil {
				return err
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove service file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Service uninstalled: %s\n", path)
			return nil
		},
	}
}

func servicePath(goos string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist"), nil
	case "linux":
		return filepath.Join(home, ".config", "systemd", "user", serviceName+".service"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s (supported: darwin, linux)", goos)
	}
}

func renderService(goos string, unit serviceUnit) (string, []byte, error) {
	path, err := servicePath(goos)
	if err != nil {
		return "", nil, err
	}
	tmpl := systemdTemplate
	if goos == "darwin" {
		tmpl = launchdTemplate
		home, _ := os.UserHomeDir()
		logDir := filepath.Join(home, ".reelbot", "logs")
		unit.Log = filepath.Join(logDir, "reelbot.log")
		unit.ErrLog = filepath.Join(logDir, "reelbot-error.log")
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return "", nil, err
		}
	}
	var buf bytes.Buffer
	if err := template.Must(template.New("unit").Parse(tmpl)).Execute(&buf, unit); err != nil {
		return "", nil, fmt.Errorf("render service file: %w", err)
	}
	return path, buf.Bytes(), nil
}

const systemdTemplate = `[Unit]
Description=reelbot Telegram video link bot
After=network-online.target

[Service]
Type=simple
ExecStart={{.Exec}} {{.Mode}} --env-file {{.EnvFile}}{{if .Config}} --config {{.Config}}{{end}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

const launchdTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.Exec}}</string>
        <string>{{.Mode}}</string>
        <string>--env-file</string>
        <string>{{.EnvFile}}</string>
{{- if .Config}}
        <string>--config</string>
        <string>{{.Config}}</string>
{{- end}}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.Log}}</string>
    <key>StandardErrorPath</key>
    <string>{{.ErrLog}}</string>
</dict>
</plist>
`
