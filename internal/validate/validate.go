// Package validate holds the registration checks that run before anything is sent
// to the backend. A failed check is a Verdict with a reason, never an error.
package validate

import (
	"fmt"

	"dance-admin/internal/models"
)

type Verdict struct {
	OK     bool
	Reason string
}

var accepted = Verdict{OK: true}

func reject(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// IsValidCategory reports whether age falls in the band.
// Age 20 satisfies both middle bands; the backend data relies on that.
func IsValidCategory(age int, category models.AgeCategory) bool {
	switch category {
	case models.AgeUnder10:
		return age < 10
	case models.Age10To20:
		return age >= 10 && age <= 20
	case models.Age20To30:
		return age >= 20 && age <= 30
	case models.AgeOver30:
		return age > 30
	default:
		return false
	}
}

func Category(age int, category models.AgeCategory) Verdict {
	if IsValidCategory(age, category) {
		return accepted
	}
	return reject("The participant does not fit into the age category %s.", category)
}

// GroupCapacity checks the declared size of a new group against its type.
func GroupCapacity(t models.GroupType, numParticipants int) Verdict {
	switch t {
	case models.GroupDuo:
		if !(numParticipants > 1 && numParticipants < 3) {
			return reject("A duo must have exactly 2 participants")
		}
	case models.GroupTrio:
		if !(numParticipants > 2 && numParticipants < 4) {
			return reject("A trio must have exactly 3 participants")
		}
	case models.GroupGrup:
		if numParticipants < 4 {
			return reject("A group must have at least 4 participants")
		}
	default:
		return reject("Unknown group type %q", string(t))
	}
	return accepted
}

// MemberLimit returns the hard membership cap for duos and trios.
// Larger groups have no cap and report false.
func MemberLimit(g models.Group) (int, bool) {
	switch g.NumParticipants {
	case 2, 3:
		return g.NumParticipants, true
	}
	return 0, false
}

// Membership decides whether one more member may join g, given how many it has now.
func Membership(g models.Group, current int) Verdict {
	limit, capped := MemberLimit(g)
	if !capped || current < limit {
		return accepted
	}
	if limit == 2 {
		return reject("Duo already has 2 participants")
	}
	return reject("Trio already has 3 participants")
}

// Entry checks the participant/group exclusivity of a competition entry.
func Entry(e models.CompetitionEntry) Verdict {
	hasParticipant := e.ParticipantID != 0
	hasGroup := e.GroupID != 0
	switch {
	case hasParticipant && hasGroup:
		return reject("An entry must name a participant or a group, not both")
	case e.Type == models.EntrySolo && !hasParticipant:
		return reject("A solo entry needs a participant")
	case e.Type == models.EntrySolo:
		return accepted
	case e.Type == models.EntryDuo || e.Type == models.EntryTrio || e.Type == models.EntryGroup:
		if !hasGroup {
			return reject("A %s entry needs a group", e.Type)
		}
		return accepted
	default:
		return reject("Unknown entry type %q", string(e.Type))
	}
}
