package backend

import (
	"context"
	"fmt"
	"strconv"

	"dance-admin/internal/models"
)

// ---------- Events & competitions ----------

func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var resp struct {
		Events []models.Event `json:"events"`
	}
	if err := c.do(ctx, request{method: "GET", path: "/events"}, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) ListCompetitions(ctx context.Context, eventID int) ([]models.Competition, error) {
	var resp struct {
		Competitions []models.Competition `json:"competitions"`
	}
	path := fmt.Sprintf("/events/%d/competitions", eventID)
	if err := c.do(ctx, request{method: "GET", path: path}, &resp); err != nil {
		return nil, err
	}
	return resp.Competitions, nil
}

// PublicSchedule is readable without a session once the registration deadline passed.
func (c *Client) PublicSchedule(ctx context.Context, competitionID int) (*models.PublicSchedule, error) {
	var ps models.PublicSchedule
	path := fmt.Sprintf("/public-schedule/%d", competitionID)
	if err := c.do(ctx, request{method: "GET", path: path}, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// ---------- Entrants ----------

func (s *Session) ListParticipants(ctx context.Context, competitionID int) ([]models.Participant, error) {
	var resp struct {
		Participants []models.Participant `json:"participants"`
	}
	if err := s.get(ctx, fmt.Sprintf("/competitions/%d/participants", competitionID), &resp); err != nil {
		return nil, err
	}
	return resp.Participants, nil
}

func (s *Session) ListGroups(ctx context.Context, competitionID int) ([]models.Group, error) {
	var resp struct {
		Groups []models.Group `json:"groups"`
	}
	if err := s.get(ctx, fmt.Sprintf("/competitions/%d/groups", competitionID), &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

// Entrants loads both kinds of entrants for one competition.
func (s *Session) Entrants(ctx context.Context, competitionID int) ([]models.Participant, []models.Group, error) {
	ps, err := s.ListParticipants(ctx, competitionID)
	if err != nil {
		return nil, nil, fmt.Errorf("participants: %w", err)
	}
	gs, err := s.ListGroups(ctx, competitionID)
	if err != nil {
		return nil, nil, fmt.Errorf("groups: %w", err)
	}
	return ps, gs, nil
}

// ---------- Schedule ----------

type scheduleBody struct {
	Schedule map[string]string `json:"schedule"`
}

var scheduleBuckets = []struct {
	suffix string
	kind   models.SlotKind
}{
	{"schedule", models.KindSolo},
	{"group_schedule", models.KindGroup},
}

// GetSchedule returns the stored solo and group times merged into one map keyed
// "<kind>-<id>". Bare ids, the form the buckets are written in, get their kind prefix.
func (s *Session) GetSchedule(ctx context.Context, competitionID int) (map[string]string, error) {
	out := map[string]string{}
	for _, b := range scheduleBuckets {
		var resp scheduleBody
		if err := s.get(ctx, fmt.Sprintf("/competitions/%d/%s", competitionID, b.suffix), &resp); err != nil {
			return nil, err
		}
		for k, v := range resp.Schedule {
			if id, err := strconv.Atoi(k); err == nil {
				k = models.SlotKey(b.kind, id)
			}
			out[k] = v
		}
	}
	return out, nil
}

func (s *Session) SaveSoloSchedule(ctx context.Context, competitionID int, times map[string]string) error {
	return s.postJSON(ctx, fmt.Sprintf("/competitions/%d/schedule", competitionID), scheduleBody{Schedule: times}, nil)
}

func (s *Session) SaveGroupSchedule(ctx context.Context, competitionID int, times map[string]string) error {
	return s.postJSON(ctx, fmt.Sprintf("/competitions/%d/group_schedule", competitionID), scheduleBody{Schedule: times}, nil)
}
