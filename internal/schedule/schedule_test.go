package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dance-admin/internal/models"
)

func soloParticipants(lastNames ...string) []models.Participant {
	ps := make([]models.Participant, 0, len(lastNames))
	for i, ln := range lastNames {
		ps = append(ps, models.Participant{
			ParticipantID: i + 1,
			FirstName:     "Ana",
			LastName:      ln,
			Age:           15,
			Gender:        "Female",
			AgeCategory:   models.Age10To20,
			Type:          "solo",
		})
	}
	return ps
}

func times(s Schedule) []string {
	out := make([]string, 0, len(s))
	for _, e := range s {
		out = append(out, e.Time)
	}
	return out
}

func TestGenerate_Empty(t *testing.T) {
	s := Generate(nil, nil)
	assert.Empty(t, s)
	assert.Empty(t, s.Map())
}

func TestGenerate_SixSoloWithBreak(t *testing.T) {
	// shuffled on purpose; the generator orders by last name
	ps := soloParticipants("D", "B", "F", "A", "E", "C")

	s := Generate(ps, nil)

	require.Len(t, s, 6)
	assert.Equal(t, []string{"09:00", "09:03", "09:06", "09:09", "09:12", "09:25"}, times(s))

	names := make([]string, 0, len(s))
	for _, e := range s {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Ana A", "Ana B", "Ana C", "Ana D", "Ana E", "Ana F"}, names)

	// input left untouched
	assert.Equal(t, "D", ps[0].LastName)
}

func TestGenerate_GroupsAfterSolos(t *testing.T) {
	ps := soloParticipants("Popescu", "Ionescu")
	gs := []models.Group{
		{GroupID: 7, Name: "Zumba Kids", AgeCategory: models.AgeUnder10, Type: "Grup"},
		{GroupID: 3, Name: "Alpha", AgeCategory: models.AgeUnder10, Type: "Duo"},
		{GroupID: 5, Name: "Beta", AgeCategory: models.AgeUnder10, Type: "Duo"},
		{GroupID: 9, Name: "Gamma", AgeCategory: models.AgeOver30, Type: "Trio"},
	}

	s := Generate(ps, gs)

	require.Len(t, s, 6)
	want := []struct {
		kind models.SlotKind
		id   int
		time string
	}{
		{models.KindSolo, 2, "09:00"},  // Ionescu
		{models.KindSolo, 1, "09:03"},  // Popescu
		{models.KindGroup, 9, "09:06"}, // "30+ years" orders before "under 10 years"
		{models.KindGroup, 3, "09:11"}, // Alpha
		{models.KindGroup, 5, "09:16"}, // Beta, 5th slot: 5 min + 10 min break
		{models.KindGroup, 7, "09:31"}, // Zumba Kids, Grup after Duo
	}
	for i, w := range want {
		assert.Equal(t, w.kind, s[i].Kind, "slot %d kind", i)
		assert.Equal(t, w.id, s[i].ID, "slot %d id", i)
		assert.Equal(t, w.time, s[i].Time, "slot %d time", i)
	}
}

func TestGenerate_ParticipantSortKeys(t *testing.T) {
	ps := []models.Participant{
		{ParticipantID: 1, LastName: "A", Gender: "Male", AgeCategory: models.Age20To30, Type: "solo"},
		{ParticipantID: 2, LastName: "B", Gender: "Female", AgeCategory: models.Age20To30, Type: "solo"},
		{ParticipantID: 3, LastName: "C", Gender: "Male", AgeCategory: models.Age10To20, Type: "solo"},
		{ParticipantID: 4, LastName: "A", Gender: "Female", AgeCategory: models.Age20To30, Type: "duo"},
	}
	SortParticipants(ps)

	ids := []int{ps[0].ParticipantID, ps[1].ParticipantID, ps[2].ParticipantID, ps[3].ParticipantID}
	// "between 10..." < "between 20...", then "duo" < "solo", then "Female" < "Male"
	assert.Equal(t, []int{3, 4, 2, 1}, ids)
}

func TestGenerate_ByteOrderIsCaseSensitive(t *testing.T) {
	s := Generate(soloParticipants("apple", "Banana"), nil)

	require.Len(t, s, 2)
	assert.Equal(t, 2, s[0].ID, "upper case sorts first")
	assert.Equal(t, 1, s[1].ID)
}

func TestGenerate_EveryEntrantOnceAndIncreasing(t *testing.T) {
	var ps []models.Participant
	for i := 0; i < 23; i++ {
		ps = append(ps, models.Participant{
			ParticipantID: i + 100,
			LastName:      string(rune('A' + i)),
			AgeCategory:   models.AgeCategories[i%4],
		})
	}
	var gs []models.Group
	for i := 0; i < 11; i++ {
		gs = append(gs, models.Group{GroupID: i + 1, Name: string(rune('a' + i)), AgeCategory: models.AgeCategories[i%4]})
	}

	s := Generate(ps, gs)
	require.Len(t, s, len(ps)+len(gs))

	seen := map[string]bool{}
	prev := time.Time{}
	for i, e := range s {
		assert.False(t, seen[e.Key()], "duplicate %s", e.Key())
		seen[e.Key()] = true

		at, err := time.Parse("15:04", e.Time)
		require.NoError(t, err)
		if i > 0 {
			assert.True(t, at.After(prev), "slot %d (%s) not after previous", i, e.Time)
		}
		prev = at
	}
}

func TestSplitAndMap(t *testing.T) {
	s := Generate(soloParticipants("A", "B"), []models.Group{{GroupID: 42, Name: "Duo Mix"}})

	solo, group := s.Split()
	assert.Equal(t, map[string]string{"1": "09:00", "2": "09:03"}, solo)
	assert.Equal(t, map[string]string{"42": "09:06"}, group)

	assert.Equal(t, map[string]string{"solo-1": "09:00", "solo-2": "09:03", "group-42": "09:06"}, s.Map())
}

func TestCompare(t *testing.T) {
	s := Generate(soloParticipants("A", "B"), []models.Group{{GroupID: 42, Name: "Duo Mix"}})

	assert.True(t, s.Compare(s.Map()).Empty())

	d := s.Compare(map[string]string{
		"solo-1":   "09:00",
		"solo-2":   "09:10",
		"group-77": "09:20",
	})

	assert.False(t, d.Empty())
	assert.Equal(t, []string{"solo-2"}, d.Changed)
	assert.Equal(t, []string{"group-42"}, d.Missing)
	assert.Equal(t, []string{"group-77"}, d.Stale)
}

type fakeWriter struct {
	mu       sync.Mutex
	soloErr  error
	groupErr error
	solo     map[string]string
	group    map[string]string
}

func (f *fakeWriter) SaveSoloSchedule(_ context.Context, _ int, times map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solo = times
	return f.soloErr
}

func (f *fakeWriter) SaveGroupSchedule(_ context.Context, _ int, times map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.group = times
	return f.groupErr
}

func TestSave_BothBucketsWritten(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &fakeWriter{}
	s := Generate(soloParticipants("A"), []models.Group{{GroupID: 9}})

	out := Save(context.Background(), w, 5, s)

	assert.True(t, out.OK())
	assert.Equal(t, map[string]string{"1": "09:00"}, w.solo)
	assert.Equal(t, map[string]string{"9": "09:03"}, w.group)
}

func TestSave_PartialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	netErr := errors.New("connection reset")
	w := &fakeWriter{groupErr: netErr}

	out := Save(context.Background(), w, 5, Generate(soloParticipants("A"), []models.Group{{GroupID: 9}}))

	assert.False(t, out.OK())
	assert.NoError(t, out.Solo)
	assert.ErrorIs(t, out.Group, netErr)
	// the solo bucket was still written
	assert.Equal(t, map[string]string{"1": "09:00"}, w.solo)
}
