package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dance-admin/internal/config"
)

func main() {
	_ = godotenv.Load()

	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var cfg config.Config
	var log *slog.Logger

	root := &cobra.Command{
		Use:           "danceadmin",
		Short:         "Dance competition admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			cfg = c
			log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(log)
			return nil
		},
	}

	root.AddCommand(
		serveCommand(&cfg, &log),
		scheduleCommand(&cfg, &log),
		enterCommand(&cfg, &log),
	)
	return root
}
