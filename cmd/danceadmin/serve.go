package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"dance-admin/internal/backend"
	"dance-admin/internal/config"
	"dance-admin/internal/notify"
	"dance-admin/internal/organizer"
	"dance-admin/internal/registration"
	"dance-admin/internal/server"
	"dance-admin/internal/sheets"
	"dance-admin/internal/tgbot"
)

func serveCommand(cfg *config.Config, log **slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the Telegram admin bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg, *log)
		},
	}
}

func serve(parent context.Context, cfg config.Config, log *slog.Logger) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.New(cfg.APIBaseURL, backend.WithTimeout(cfg.APITimeout), backend.WithLogger(log))
	sess, err := client.Login(ctx, cfg.APIEmail, cfg.APIPassword)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer sess.Close()

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}

	notifiers := notify.Multi{notify.NewLog(log)}
	var bot *tgbotapi.BotAPI
	if cfg.TelegramEnabled() {
		b, err := tgbot.NewBotAPI(cfg)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		bot = b
		notifiers = append(notifiers, notify.NewTelegram(b, cfg.AdminChatIDs()...))
	}

	org := organizer.New(sess, notifiers, exporter, log)
	httpSrv := server.New(cfg, client, org, log)

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			stop()
		}
	}()

	if bot != nil {
		app := tgbot.New(cfg, bot, tgbot.Deps{
			Catalog:   client,
			Directory: sess,
			Planner:   org,
			Registrar: registration.New(sess, log),
		}, log)
		go func() {
			if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped", "error", err)
				stop()
			}
		}()
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, admin bot disabled")
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// newExporter returns a nil interface, not a typed nil, when sheets are off.
func newExporter(ctx context.Context, cfg config.Config) (organizer.Exporter, error) {
	if !cfg.SheetsEnabled() {
		return nil, nil
	}
	c, err := sheets.New(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("sheets: %w", err)
	}
	return c, nil
}
