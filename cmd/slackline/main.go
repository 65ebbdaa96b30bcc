package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slackline/internal/app"
	"slackline/internal/config"
	"slackline/internal/log"
	"slackline/internal/static"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "slackline",
		Short:         "Terminal chat client for the mini-slack backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, overrides)
			if err != nil {
				return err
			}

			// The TUI owns the terminal; logs go to a file.
			logger, closer, err := log.NewFile(cfg.LogLevel, cfg.LogPath())
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.New(cfg, logger).Run(ctx)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringVar(&overrides.APIURL, "api-url", "", "backend REST base URL")
	flags.StringVar(&overrides.SocketURL, "socket-url", "", "backend websocket URL")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&overrides.SendTransport, "send-transport", "", "message send transport (rest or socket)")

	root.AddCommand(staticCommand(&configPath, &overrides))
	root.AddCommand(logoutCommand(&configPath, &overrides))
	return root
}

func staticCommand(configPath *string, overrides *config.Config) *cobra.Command {
	var addr, dir string

	cmd := &cobra.Command{
		Use:   "static",
		Short: "Serve the legacy web frontend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath, *overrides)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.StaticAddr = addr
			}
			if dir != "" {
				cfg.StaticDir = dir
			}

			logger := log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return static.Run(ctx, cfg.StaticAddr, cfg.StaticDir, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to serve")
	return cmd
}

func logoutCommand(configPath *string, overrides *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath, *overrides)
			if err != nil {
				return err
			}

			logger := log.New(cfg.LogLevel)
			if err := app.New(cfg, logger).Logout(context.Background()); err != nil {
				return err
			}
			logger.Info().Msg("session cleared")
			return nil
		},
	}
}

func loadConfig(path string, overrides config.Config) (config.Config, error) {
	bootLogger := log.New("warn")
	cfg, _, err := config.Load(bootLogger, path)
	if err != nil {
		return cfg, err
	}
	cfg.UpdateFrom(overrides)
	return cfg, nil
}
