// Package registration gates group and competition registrations behind the local
// checks in package validate. A rejected request never reaches the backend.
package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"dance-admin/internal/models"
	"dance-admin/internal/validate"
)

// RejectedError carries a validation reason back to the caller.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

// IsRejected reports whether err is a local validation rejection rather than a
// backend or network failure.
func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}

func rejected(v validate.Verdict) error {
	return &RejectedError{Reason: v.Reason}
}

// Backend is the slice of the REST API registration needs. *backend.Session satisfies it.
type Backend interface {
	CreateGroup(ctx context.Context, g models.Group) (int, error)
	GroupMemberCount(ctx context.Context, groupID int) (int, error)
	AddGroupMember(ctx context.Context, groupID, participantID int) error
	SubmitEntry(ctx context.Context, e models.CompetitionEntry, music io.Reader) error
}

type Service struct {
	api Backend
	log *slog.Logger
}

func New(api Backend, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{api: api, log: log.With("module", "registration")}
}

// CreateGroup checks the declared size against the group type, then creates it.
func (s *Service) CreateGroup(ctx context.Context, g models.Group) (int, error) {
	if v := validate.GroupCapacity(models.GroupType(g.Type), g.NumParticipants); !v.OK {
		s.log.Info("group rejected", "name", g.Name, "type", g.Type, "num_participants", g.NumParticipants, "reason", v.Reason)
		return 0, rejected(v)
	}
	id, err := s.api.CreateGroup(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("create group: %w", err)
	}
	s.log.Info("group created", "group_id", id, "name", g.Name)
	return id, nil
}

// AddMember adds p to g. The participant must fit the group's age category, and a
// duo or trio must still have room.
func (s *Service) AddMember(ctx context.Context, g models.Group, p models.Participant) error {
	if v := validate.Category(p.Age, g.AgeCategory); !v.OK {
		return rejected(v)
	}
	if _, capped := validate.MemberLimit(g); capped {
		n, err := s.api.GroupMemberCount(ctx, g.GroupID)
		if err != nil {
			return fmt.Errorf("member count: %w", err)
		}
		if v := validate.Membership(g, n); !v.OK {
			s.log.Info("member rejected", "group_id", g.GroupID, "participant_id", p.ParticipantID, "reason", v.Reason)
			return rejected(v)
		}
	}
	if err := s.api.AddGroupMember(ctx, g.GroupID, p.ParticipantID); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// SubmitEntry registers a participant or group for a competition. Solo entries need
// p, the entered participant, for the age check and are rejected without it; p is
// ignored for group entries.
func (s *Service) SubmitEntry(ctx context.Context, e models.CompetitionEntry, p *models.Participant, music io.Reader) error {
	if v := validate.Entry(e); !v.OK {
		return rejected(v)
	}
	if e.Type == models.EntrySolo {
		if p == nil {
			return &RejectedError{Reason: "participant unknown, cannot check the age category"}
		}
		if p.ParticipantID != e.ParticipantID {
			return &RejectedError{Reason: "participant does not match the entry"}
		}
		if v := validate.Category(p.Age, e.AgeCategory); !v.OK {
			return rejected(v)
		}
	}
	if err := s.api.SubmitEntry(ctx, e, music); err != nil {
		return fmt.Errorf("submit entry: %w", err)
	}
	s.log.Info("entry submitted", "competition_id", e.CompetitionID, "type", e.Type,
		"participant_id", e.ParticipantID, "group_id", e.GroupID)
	return nil
}

// SoloEntry builds the entry for p. An empty category means the participant's own.
func SoloEntry(competitionID int, p models.Participant, category models.AgeCategory) models.CompetitionEntry {
	if category == "" {
		category = p.AgeCategory
	}
	return models.CompetitionEntry{
		CompetitionID: competitionID,
		AgeCategory:   category,
		Type:          models.EntrySolo,
		Gender:        p.Gender,
		ParticipantID: p.ParticipantID,
	}
}

// GroupEntry builds the entry for g, with the entry type taken from the group type.
// An empty category means the group's own.
func GroupEntry(competitionID int, g models.Group, category models.AgeCategory) models.CompetitionEntry {
	if category == "" {
		category = g.AgeCategory
	}
	return models.CompetitionEntry{
		CompetitionID: competitionID,
		AgeCategory:   category,
		Type:          entryType(models.GroupType(g.Type)),
		GroupID:       g.GroupID,
	}
}

func entryType(t models.GroupType) models.EntryType {
	switch t {
	case models.GroupDuo:
		return models.EntryDuo
	case models.GroupTrio:
		return models.EntryTrio
	default:
		return models.EntryGroup
	}
}
