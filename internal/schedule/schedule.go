// Package schedule builds the start-time order for a competition.
//
// Solo participants go first, ordered by (age category, type, gender, last name),
// then groups ordered by (age category, type, name). Starting at 09:00 each solo
// entrant takes 3 minutes and each group 5; after every fifth entrant a 10 minute
// break is added.
package schedule

import (
	"sort"
	"strings"
	"time"

	"dance-admin/internal/models"
)

const (
	SoloSlot    = 3 * time.Minute
	GroupSlot   = 5 * time.Minute
	BreakEvery  = 5
	BreakLength = 10 * time.Minute
	clockLayout = "15:04"
)

// Start is the first slot of the day.
var Start = time.Date(2000, time.January, 1, 9, 0, 0, 0, time.UTC)

// Entry is one scheduled entrant with enough detail to print it.
type Entry struct {
	models.Slot
	Name        string
	AgeCategory models.AgeCategory
	Type        string
}

// Schedule is the generated order; position i is the (i+1)th entrant on stage.
type Schedule []Entry

// Generate is pure: inputs are not modified and an empty input yields an empty schedule.
func Generate(participants []models.Participant, groups []models.Group) Schedule {
	ps := append([]models.Participant(nil), participants...)
	gs := append([]models.Group(nil), groups...)
	SortParticipants(ps)
	SortGroups(gs)

	out := make(Schedule, 0, len(ps)+len(gs))
	for _, p := range ps {
		out = append(out, Entry{
			Slot:        models.Slot{Kind: models.KindSolo, ID: p.ParticipantID},
			Name:        p.FullName(),
			AgeCategory: p.AgeCategory,
			Type:        p.Type,
		})
	}
	for _, g := range gs {
		out = append(out, Entry{
			Slot:        models.Slot{Kind: models.KindGroup, ID: g.GroupID},
			Name:        g.Name,
			AgeCategory: g.AgeCategory,
			Type:        g.Type,
		})
	}

	clock := Start
	for i := range out {
		out[i].Time = clock.Format(clockLayout)
		if out[i].Kind == models.KindSolo {
			clock = clock.Add(SoloSlot)
		} else {
			clock = clock.Add(GroupSlot)
		}
		if (i+1)%BreakEvery == 0 {
			clock = clock.Add(BreakLength)
		}
	}
	return out
}

func SortParticipants(ps []models.Participant) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if c := strings.Compare(string(a.AgeCategory), string(b.AgeCategory)); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Gender, b.Gender); c != 0 {
			return c < 0
		}
		return a.LastName < b.LastName
	})
}

func SortGroups(gs []models.Group) {
	sort.SliceStable(gs, func(i, j int) bool {
		a, b := gs[i], gs[j]
		if c := strings.Compare(string(a.AgeCategory), string(b.AgeCategory)); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c < 0
		}
		return a.Name < b.Name
	})
}

// Map returns the schedule keyed by "<kind>-<id>".
func (s Schedule) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, e := range s {
		m[e.Key()] = e.Time
	}
	return m
}

// Split divides the schedule into the two buckets the backend stores separately,
// each keyed by the bare entity id.
func (s Schedule) Split() (solo, group map[string]string) {
	solo = map[string]string{}
	group = map[string]string{}
	for _, e := range s {
		id := idString(e.ID)
		if e.Kind == models.KindSolo {
			solo[id] = e.Time
		} else {
			group[id] = e.Time
		}
	}
	return solo, group
}

// Drift lists where a stored schedule disagrees with a generated one. All keys are
// "<kind>-<id>" and each list is sorted.
type Drift struct {
	Changed []string // stored with a different time
	Missing []string // generated but not stored
	Stale   []string // stored but no longer entered
}

func (d Drift) Empty() bool {
	return len(d.Changed) == 0 && len(d.Missing) == 0 && len(d.Stale) == 0
}

// Compare checks stored times, as returned by the backend, against s.
func (s Schedule) Compare(stored map[string]string) Drift {
	var d Drift
	generated := s.Map()
	for k, t := range generated {
		st, ok := stored[k]
		switch {
		case !ok:
			d.Missing = append(d.Missing, k)
		case st != t:
			d.Changed = append(d.Changed, k)
		}
	}
	for k := range stored {
		if _, ok := generated[k]; !ok {
			d.Stale = append(d.Stale, k)
		}
	}
	sort.Strings(d.Changed)
	sort.Strings(d.Missing)
	sort.Strings(d.Stale)
	return d
}
