package models

import "fmt"

// AgeCategory values are the exact strings the backend stores.
type AgeCategory string

const (
	AgeUnder10 AgeCategory = "under 10 years"
	Age10To20  AgeCategory = "between 10 and 20 years"
	Age20To30  AgeCategory = "between 20 and 30 years"
	AgeOver30  AgeCategory = "30+ years"
)

// AgeCategories lists the four bands in display order.
var AgeCategories = []AgeCategory{AgeUnder10, Age10To20, Age20To30, AgeOver30}

// GroupType is the label picked when a group is created.
type GroupType string

const (
	GroupDuo  GroupType = "Duo"
	GroupTrio GroupType = "Trio"
	GroupGrup GroupType = "Grup"
)

// EntryType is the type of a competition entry.
type EntryType string

const (
	EntrySolo  EntryType = "solo"
	EntryDuo   EntryType = "duo"
	EntryTrio  EntryType = "trio"
	EntryGroup EntryType = "group"
)

// SlotKind is the schedule bucket an entrant belongs to.
type SlotKind string

const (
	KindSolo  SlotKind = "solo"
	KindGroup SlotKind = "group"
)

type Event struct {
	EventID  int    `json:"event_id"`
	Name     string `json:"name"`
	Date     string `json:"date,omitempty"`
	Location string `json:"location,omitempty"`
}

type Competition struct {
	CompetitionID int    `json:"competition_id"`
	EventID       int    `json:"event_id"`
	Name          string `json:"name"`
}

type Participant struct {
	ParticipantID int         `json:"participant_id"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Age           int         `json:"age"`
	Gender        string      `json:"gender"`
	AgeCategory   AgeCategory `json:"age_category"`
	Type          string      `json:"type,omitempty"`
	ClubID        int         `json:"club_id,omitempty"`
}

func (p Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

type Group struct {
	GroupID         int           `json:"group_id"`
	Name            string        `json:"name"`
	NumParticipants int           `json:"num_participants"`
	AgeCategory     AgeCategory   `json:"age_category"`
	Type            string        `json:"type"`
	Participants    []Participant `json:"participants,omitempty"`
}

// CompetitionEntry registers exactly one participant or one group for a competition.
type CompetitionEntry struct {
	CompetitionID int
	AgeCategory   AgeCategory
	Type          EntryType
	Gender        string // solo only
	ParticipantID int
	GroupID       int
	MusicFileName string
}

// Slot is one assigned start time.
type Slot struct {
	Kind SlotKind
	ID   int
	Time string // HH:MM
}

// Key returns the "<kind>-<id>" form the backend and the admin views use.
func (s Slot) Key() string {
	return SlotKey(s.Kind, s.ID)
}

func SlotKey(kind SlotKind, id int) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// PublicSoloSlot and PublicGroupSlot are rows of the public schedule.
type PublicSoloSlot struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ScheduleTime string `json:"schedule_time"`
}

type PublicGroupSlot struct {
	GroupName    string `json:"group_name"`
	ScheduleTime string `json:"schedule_time"`
}

type PublicSchedule struct {
	SoloSchedule  []PublicSoloSlot  `json:"soloSchedule"`
	GroupSchedule []PublicGroupSlot `json:"groupSchedule"`
}
