package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dance-admin/internal/backend"
	"dance-admin/internal/config"
	"dance-admin/internal/models"
	"dance-admin/internal/registration"
)

type enterFlags struct {
	competitionID int
	participantID int
	groupID       int
	category      string
	music         string
}

// enterCommand registers one participant or group for a competition.
func enterCommand(cfg *config.Config, log **slog.Logger) *cobra.Command {
	var f enterFlags

	cmd := &cobra.Command{
		Use:   "enter",
		Short: "Enter a participant or a group in a competition",
		Long: `Enter a participant (--participant) or a group (--group) in a competition.
The age category defaults to the entrant's own; solo entries are checked against
the participant's age before anything is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l := *cfg, *log
			if err := c.RequireCredentials(); err != nil {
				return err
			}
			if (f.participantID == 0) == (f.groupID == 0) {
				return errors.New("pass exactly one of --participant and --group")
			}
			var category models.AgeCategory
			if f.category != "" {
				category = models.AgeCategory(f.category)
				if !isCategory(category) {
					return fmt.Errorf("unknown age category %q", f.category)
				}
			}

			var music io.Reader
			if f.music != "" {
				file, err := os.Open(f.music)
				if err != nil {
					return fmt.Errorf("music file: %w", err)
				}
				defer file.Close()
				music = file
			}

			ctx := cmd.Context()
			client := backend.New(c.APIBaseURL, backend.WithTimeout(c.APITimeout), backend.WithLogger(l))
			sess, err := client.Login(ctx, c.APIEmail, c.APIPassword)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			defer sess.Close()

			e, p, err := buildEntry(ctx, sess, f, category)
			if err != nil {
				return err
			}
			if f.music != "" {
				e.MusicFileName = filepath.Base(f.music)
			}

			if err := registration.New(sess, l).SubmitEntry(ctx, e, p, music); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entered in competition %d (%s, %s)\n", e.CompetitionID, e.Type, e.AgeCategory)
			return nil
		},
	}

	cmd.Flags().IntVarP(&f.competitionID, "competition", "c", 0, "Competition ID")
	cmd.Flags().IntVarP(&f.participantID, "participant", "p", 0, "Participant ID (solo entry)")
	cmd.Flags().IntVarP(&f.groupID, "group", "g", 0, "Group ID (duo, trio or group entry)")
	cmd.Flags().StringVar(&f.category, "category", "", `Age category, e.g. "between 10 and 20 years"`)
	cmd.Flags().StringVar(&f.music, "music", "", "Path to the music file to upload")
	_ = cmd.MarkFlagRequired("competition")

	return cmd
}

func buildEntry(ctx context.Context, sess *backend.Session, f enterFlags, category models.AgeCategory) (models.CompetitionEntry, *models.Participant, error) {
	if f.participantID != 0 {
		ps, err := sess.AllParticipants(ctx)
		if err != nil {
			return models.CompetitionEntry{}, nil, err
		}
		for _, p := range ps {
			if p.ParticipantID == f.participantID {
				return registration.SoloEntry(f.competitionID, p, category), &p, nil
			}
		}
		return models.CompetitionEntry{}, nil, fmt.Errorf("participant %d not found", f.participantID)
	}

	gs, err := sess.AllGroups(ctx)
	if err != nil {
		return models.CompetitionEntry{}, nil, err
	}
	for _, g := range gs {
		if g.GroupID == f.groupID {
			return registration.GroupEntry(f.competitionID, g, category), nil, nil
		}
	}
	return models.CompetitionEntry{}, nil, fmt.Errorf("group %d not found", f.groupID)
}

func isCategory(c models.AgeCategory) bool {
	for _, x := range models.AgeCategories {
		if x == c {
			return true
		}
	}
	return false
}
