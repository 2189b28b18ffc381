// Package notify delivers user-visible outcome messages.
package notify

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dance-admin/internal/schedule"
)

type Level string

const (
	Success Level = "success"
	Failure Level = "failure"
)

type Notice struct {
	Level Level
	Text  string
	Err   error
}

func (n Notice) String() string {
	if n.Level == Failure {
		return "❌ " + n.Text
	}
	return "✅ " + n.Text
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// ReportSave emits one notice per schedule bucket, in solo-then-group order.
// Both notices are attempted even if delivering the first one fails.
func ReportSave(ctx context.Context, n Notifier, out schedule.SaveOutcome) error {
	solo := Notice{Level: Success, Text: "Solo schedule saved successfully"}
	if out.Solo != nil {
		solo = Notice{Level: Failure, Text: "Failed to save solo schedule", Err: out.Solo}
	}
	group := Notice{Level: Success, Text: "Group schedule saved successfully"}
	if out.Group != nil {
		group = Notice{Level: Failure, Text: "Failed to save group schedule", Err: out.Group}
	}
	return errors.Join(n.Notify(ctx, solo), n.Notify(ctx, group))
}

// Log writes notices to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{logger: l.With("module", "notify")}
}

func (l *Log) Notify(ctx context.Context, n Notice) error {
	if n.Level == Failure {
		l.logger.ErrorContext(ctx, n.Text, "error", n.Err)
		return nil
	}
	l.logger.InfoContext(ctx, n.Text)
	return nil
}

// Sender is the part of *tgbotapi.BotAPI used for notices.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends each notice to every configured chat.
type Telegram struct {
	bot   Sender
	chats []int64
}

func NewTelegram(bot Sender, chats ...int64) *Telegram {
	return &Telegram{bot: bot, chats: chats}
}

func (t *Telegram) Notify(_ context.Context, n Notice) error {
	text := n.String()
	if n.Err != nil {
		text += "\n" + n.Err.Error()
	}
	var errs []error
	for _, chat := range t.chats {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chat, text)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, x := range m {
		if err := x.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
