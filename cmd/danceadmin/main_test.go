package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"dance-admin/internal/config"
	"dance-admin/internal/models"
)

func TestScheduleFlags_ExportNeedsSheetsBeforeLogin(t *testing.T) {
	creds := config.Config{APIEmail: "a@b.c", APIPassword: "x"}

	assert.NoError(t, scheduleFlags{competitionID: 8, save: true}.check(creds))
	assert.ErrorContains(t, scheduleFlags{competitionID: 8, save: true, export: true}.check(creds), "--export needs")

	withSheets := creds
	withSheets.SpreadsheetID = "sid"
	withSheets.GoogleServiceAccountJSON = "/etc/sa.json"
	assert.NoError(t, scheduleFlags{competitionID: 8, export: true}.check(withSheets))

	assert.Error(t, scheduleFlags{competitionID: 8}.check(config.Config{}))
}

func TestEnterCommand_FlagValidation(t *testing.T) {
	cfg := config.Config{APIBaseURL: "http://127.0.0.1:1", APIEmail: "a@b.c", APIPassword: "x"}
	log := testLogger()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"neither entrant", []string{"--competition", "8"}, "exactly one of"},
		{"both entrants", []string{"--competition", "8", "--participant", "3", "--group", "5"}, "exactly one of"},
		{"bad category", []string{"--competition", "8", "--participant", "3", "--category", "teens"}, "unknown age category"},
		{"missing music", []string{"--competition", "8", "--group", "5", "--music", "/nonexistent/tango.mp3"}, "music file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := enterCommand(&cfg, &log)
			cmd.SetArgs(tt.args)
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			assert.ErrorContains(t, cmd.Execute(), tt.want)
		})
	}
}

func TestIsCategory(t *testing.T) {
	assert.True(t, isCategory(models.Age20To30))
	assert.False(t, isCategory("teens"))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
