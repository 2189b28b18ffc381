// Package organizer runs the schedule workflow for one competition: load the
// entrants, generate the order, persist both buckets, tell the user how it went.
package organizer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"dance-admin/internal/models"
	"dance-admin/internal/notify"
	"dance-admin/internal/schedule"
)

// Backend is what the workflow needs from an authenticated session.
type Backend interface {
	schedule.Writer
	Entrants(ctx context.Context, competitionID int) ([]models.Participant, []models.Group, error)
	GetSchedule(ctx context.Context, competitionID int) (map[string]string, error)
}

// Exporter publishes a generated schedule somewhere outside the backend.
type Exporter interface {
	WriteSchedule(ctx context.Context, competitionID int, s schedule.Schedule) error
}

type Organizer struct {
	api      Backend
	notifier notify.Notifier
	exporter Exporter
	log      *slog.Logger
}

// New wires the workflow. exporter may be nil when no spreadsheet is configured.
func New(api Backend, n notify.Notifier, exporter Exporter, log *slog.Logger) *Organizer {
	if log == nil {
		log = slog.Default()
	}
	if n == nil {
		n = notify.NewLog(log)
	}
	return &Organizer{api: api, notifier: n, exporter: exporter, log: log.With("module", "organizer")}
}

// Preview generates the schedule without writing anything.
func (o *Organizer) Preview(ctx context.Context, competitionID int) (schedule.Schedule, error) {
	ps, gs, err := o.api.Entrants(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("load entrants for competition %d: %w", competitionID, err)
	}
	s := schedule.Generate(ps, gs)
	o.log.Debug("schedule generated", "competition_id", competitionID, "participants", len(ps), "groups", len(gs))
	return s, nil
}

// Stored returns the times currently saved in the backend, keyed "<kind>-<id>".
func (o *Organizer) Stored(ctx context.Context, competitionID int) (map[string]string, error) {
	stored, err := o.api.GetSchedule(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("stored schedule: %w", err)
	}
	return stored, nil
}

// Publish generates and saves the schedule, then reports each bucket separately.
// A failed write does not undo the other one.
func (o *Organizer) Publish(ctx context.Context, competitionID int) (schedule.Schedule, schedule.SaveOutcome, error) {
	s, err := o.Preview(ctx, competitionID)
	if err != nil {
		return nil, schedule.SaveOutcome{}, err
	}
	out := schedule.Save(ctx, o.api, competitionID, s)
	if out.Solo != nil {
		o.log.Error("solo schedule not saved", "competition_id", competitionID, "error", out.Solo)
	}
	if out.Group != nil {
		o.log.Error("group schedule not saved", "competition_id", competitionID, "error", out.Group)
	}
	if err := notify.ReportSave(ctx, o.notifier, out); err != nil {
		o.log.Warn("notify", "error", err)
	}
	return s, out, nil
}

// Export writes the freshly generated schedule to the configured exporter.
func (o *Organizer) Export(ctx context.Context, competitionID int) (schedule.Schedule, error) {
	if o.exporter == nil {
		return nil, fmt.Errorf("no schedule exporter configured")
	}
	s, err := o.Preview(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if err := o.exporter.WriteSchedule(ctx, competitionID, s); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return s, nil
}

// CSV renders a schedule for download.
func CSV(s schedule.Schedule) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"time", "kind", "id", "name", "age_category", "type"}); err != nil {
		return "", err
	}
	for _, e := range s {
		if err := w.Write([]string{e.Time, string(e.Kind), strconv.Itoa(e.ID), e.Name, string(e.AgeCategory), e.Type}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
