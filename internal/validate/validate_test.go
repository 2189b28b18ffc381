package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dance-admin/internal/models"
)

func TestIsValidCategory(t *testing.T) {
	for age := 0; age <= 60; age++ {
		assert.Equal(t, age < 10, IsValidCategory(age, models.AgeUnder10), "age %d under 10", age)
		assert.Equal(t, age >= 10 && age <= 20, IsValidCategory(age, models.Age10To20), "age %d 10-20", age)
		assert.Equal(t, age >= 20 && age <= 30, IsValidCategory(age, models.Age20To30), "age %d 20-30", age)
		assert.Equal(t, age > 30, IsValidCategory(age, models.AgeOver30), "age %d 30+", age)
	}
}

func TestIsValidCategory_Boundaries(t *testing.T) {
	tests := []struct {
		age      int
		category models.AgeCategory
		want     bool
	}{
		{9, models.AgeUnder10, true},
		{10, models.AgeUnder10, false},
		{10, models.Age10To20, true},
		{20, models.Age10To20, true},
		{20, models.Age20To30, true},
		{30, models.Age20To30, true},
		{30, models.AgeOver30, false},
		{31, models.AgeOver30, true},
		{25, models.AgeCategory("adults"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidCategory(tt.age, tt.category), "age %d in %q", tt.age, tt.category)
	}
}

func TestCategory_Reason(t *testing.T) {
	v := Category(12, models.AgeOver30)
	assert.False(t, v.OK)
	assert.Equal(t, "The participant does not fit into the age category 30+ years.", v.Reason)

	assert.True(t, Category(12, models.Age10To20).OK)
}

func TestGroupCapacity(t *testing.T) {
	tests := []struct {
		name   string
		typ    models.GroupType
		n      int
		ok     bool
		reason string
	}{
		{"duo of two", models.GroupDuo, 2, true, ""},
		{"duo of four", models.GroupDuo, 4, false, "A duo must have exactly 2 participants"},
		{"duo of one", models.GroupDuo, 1, false, "A duo must have exactly 2 participants"},
		{"trio of three", models.GroupTrio, 3, true, ""},
		{"trio of two", models.GroupTrio, 2, false, "A trio must have exactly 3 participants"},
		{"grup of four", models.GroupGrup, 4, true, ""},
		{"grup of twelve", models.GroupGrup, 12, true, ""},
		{"grup of three", models.GroupGrup, 3, false, "A group must have at least 4 participants"},
		{"unknown", models.GroupType("Quartet"), 4, false, `Unknown group type "Quartet"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := GroupCapacity(tt.typ, tt.n)
			assert.Equal(t, tt.ok, v.OK)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestMembership(t *testing.T) {
	duo := models.Group{GroupID: 1, NumParticipants: 2}
	trio := models.Group{GroupID: 2, NumParticipants: 3}
	big := models.Group{GroupID: 3, NumParticipants: 6}

	assert.True(t, Membership(duo, 1).OK)
	v := Membership(duo, 2)
	assert.False(t, v.OK)
	assert.Equal(t, "Duo already has 2 participants", v.Reason)

	assert.True(t, Membership(trio, 2).OK)
	assert.Equal(t, "Trio already has 3 participants", Membership(trio, 3).Reason)

	assert.True(t, Membership(big, 40).OK)
	_, capped := MemberLimit(big)
	assert.False(t, capped)
}

func TestEntry(t *testing.T) {
	assert.True(t, Entry(models.CompetitionEntry{Type: models.EntrySolo, ParticipantID: 4}).OK)
	assert.True(t, Entry(models.CompetitionEntry{Type: models.EntryTrio, GroupID: 2}).OK)

	assert.False(t, Entry(models.CompetitionEntry{Type: models.EntrySolo, ParticipantID: 4, GroupID: 2}).OK)
	assert.False(t, Entry(models.CompetitionEntry{Type: models.EntrySolo, GroupID: 2}).OK)
	assert.Equal(t, "A duo entry needs a group", Entry(models.CompetitionEntry{Type: models.EntryDuo, ParticipantID: 4}).Reason)
	assert.False(t, Entry(models.CompetitionEntry{Type: "relay", GroupID: 1}).OK)
}
