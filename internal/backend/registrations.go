package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"dance-admin/internal/models"
)

// ---------- Participants & groups ----------

func (s *Session) AllParticipants(ctx context.Context) ([]models.Participant, error) {
	var resp struct {
		Status       string               `json:"Status"`
		Participants []models.Participant `json:"participants"`
	}
	if err := s.get(ctx, "/participants", &resp); err != nil {
		return nil, err
	}
	if resp.Status != "" && resp.Status != "Success" {
		return nil, fmt.Errorf("participants: status %q", resp.Status)
	}
	return resp.Participants, nil
}

func (s *Session) AllGroups(ctx context.Context) ([]models.Group, error) {
	var resp struct {
		Groups []models.Group `json:"groups"`
	}
	if err := s.get(ctx, "/groups", &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

type createGroupRequest struct {
	Name            string             `json:"name"`
	NumParticipants int                `json:"num_participants"`
	AgeCategory     models.AgeCategory `json:"age_category"`
	Type            string             `json:"type"`
}

// CreateGroup returns the new group id when the backend reports one.
func (s *Session) CreateGroup(ctx context.Context, g models.Group) (int, error) {
	var resp struct {
		GroupID int `json:"group_id"`
		ID      int `json:"id"`
	}
	in := createGroupRequest{Name: g.Name, NumParticipants: g.NumParticipants, AgeCategory: g.AgeCategory, Type: g.Type}
	if err := s.postJSON(ctx, "/groups", in, &resp); err != nil {
		return 0, err
	}
	if resp.GroupID != 0 {
		return resp.GroupID, nil
	}
	return resp.ID, nil
}

func (s *Session) GroupMemberCount(ctx context.Context, groupID int) (int, error) {
	var resp struct {
		Count int `json:"participant_count"`
	}
	if err := s.get(ctx, fmt.Sprintf("/groups/%d/participants-count", groupID), &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *Session) AddGroupMember(ctx context.Context, groupID, participantID int) error {
	in := map[string]string{"participantId": strconv.Itoa(participantID)}
	return s.postJSON(ctx, fmt.Sprintf("/groups/%d/participants", groupID), in, nil)
}

// ---------- Competition entries ----------

// SubmitEntry posts the entry as multipart form data. music may be nil.
func (s *Session) SubmitEntry(ctx context.Context, e models.CompetitionEntry, music io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"competitionId", strconv.Itoa(e.CompetitionID)},
		{"ageCategory", string(e.AgeCategory)},
		{"type", string(e.Type)},
	}
	if e.Type == models.EntrySolo {
		fields = append(fields,
			[2]string{"gender", e.Gender},
			[2]string{"participantId", strconv.Itoa(e.ParticipantID)},
		)
	} else {
		fields = append(fields, [2]string{"groupId", strconv.Itoa(e.GroupID)})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	if music != nil {
		name := e.MusicFileName
		if name == "" {
			name = "music"
		}
		fw, err := mw.CreateFormFile("musicFile", name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, music); err != nil {
			return fmt.Errorf("copy music file: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	return s.do(ctx, request{
		method:      "POST",
		path:        "/competition-entries",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, nil)
}
