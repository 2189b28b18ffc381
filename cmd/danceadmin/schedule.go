package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"dance-admin/internal/backend"
	"dance-admin/internal/config"
	"dance-admin/internal/organizer"
	"dance-admin/internal/schedule"
)

type scheduleFlags struct {
	competitionID int
	save          bool
	export        bool
}

// check runs before login so a misconfigured --export writes nothing.
func (f scheduleFlags) check(c config.Config) error {
	if err := c.RequireCredentials(); err != nil {
		return err
	}
	if f.export && !c.SheetsEnabled() {
		return errors.New("--export needs GOOGLE_SHEETS_SPREADSHEET_ID and GOOGLE_SERVICE_ACCOUNT_JSON")
	}
	return nil
}

// scheduleCommand generates the running order for one competition and prints it as CSV.
func scheduleCommand(cfg *config.Config, log **slog.Logger) *cobra.Command {
	var f scheduleFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate the schedule for a competition",
		Long: `Generate the running order for a competition and print it as CSV.
With --save both buckets are written to the backend; with --export the
schedule is also written to the configured spreadsheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l := *cfg, *log
			if err := f.check(c); err != nil {
				return err
			}
			ctx := cmd.Context()

			client := backend.New(c.APIBaseURL, backend.WithTimeout(c.APITimeout), backend.WithLogger(l))
			sess, err := client.Login(ctx, c.APIEmail, c.APIPassword)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			defer sess.Close()

			var exporter organizer.Exporter
			if f.export {
				if exporter, err = newExporter(ctx, c); err != nil {
					return err
				}
			}
			org := organizer.New(sess, nil, exporter, l)

			var s schedule.Schedule
			var out schedule.SaveOutcome
			switch {
			case f.save:
				s, out, err = org.Publish(ctx, f.competitionID)
			default:
				s, err = org.Preview(ctx, f.competitionID)
			}
			if err != nil {
				return err
			}

			body, err := organizer.CSV(s)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), body)

			if f.export {
				if err := exporter.WriteSchedule(ctx, f.competitionID, s); err != nil {
					return fmt.Errorf("export: %w", err)
				}
			}
			if !out.OK() {
				return errors.Join(out.Solo, out.Group)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&f.competitionID, "competition", "c", 0, "Competition ID")
	cmd.Flags().BoolVar(&f.save, "save", false, "Persist the solo and group schedules")
	cmd.Flags().BoolVar(&f.export, "export", false, "Write the schedule to Google Sheets")
	_ = cmd.MarkFlagRequired("competition")

	return cmd
}
