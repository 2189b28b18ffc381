package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dance-admin/internal/schedule"
)

type recorder struct {
	got []Notice
	err error
}

func (r *recorder) Notify(_ context.Context, n Notice) error {
	r.got = append(r.got, n)
	return r.err
}

func TestReportSave_IndependentOutcomes(t *testing.T) {
	rec := &recorder{}
	out := schedule.SaveOutcome{Group: errors.New("502 bad gateway")}

	require.NoError(t, ReportSave(context.Background(), rec, out))

	require.Len(t, rec.got, 2)
	assert.Equal(t, Success, rec.got[0].Level)
	assert.Equal(t, "Solo schedule saved successfully", rec.got[0].Text)
	assert.Equal(t, Failure, rec.got[1].Level)
	assert.Equal(t, "Failed to save group schedule", rec.got[1].Text)
	assert.EqualError(t, rec.got[1].Err, "502 bad gateway")
}

func TestReportSave_DeliveryErrorStillSendsBoth(t *testing.T) {
	rec := &recorder{err: errors.New("chat gone")}

	err := ReportSave(context.Background(), rec, schedule.SaveOutcome{})

	assert.Error(t, err)
	assert.Len(t, rec.got, 2)
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegram_SendsToEveryChat(t *testing.T) {
	bot := &fakeSender{}
	tg := NewTelegram(bot, 11, 22)

	err := tg.Notify(context.Background(), Notice{Level: Failure, Text: "Failed to save solo schedule", Err: errors.New("timeout")})

	require.NoError(t, err)
	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(11), bot.sent[0].ChatID)
	assert.Equal(t, int64(22), bot.sent[1].ChatID)
	assert.Equal(t, "❌ Failed to save solo schedule\ntimeout", bot.sent[0].Text)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, NewLog(nil), b}

	require.NoError(t, m.Notify(context.Background(), Notice{Level: Success, Text: "ok"}))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}
