package organizer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dance-admin/internal/models"
	"dance-admin/internal/notify"
	"dance-admin/internal/schedule"
)

type fakeBackend struct {
	mu           sync.Mutex
	participants []models.Participant
	groups       []models.Group
	loadErr      error
	stored       map[string]string
	soloErr      error
	groupErr     error
	saved        map[string]map[string]string
}

func (f *fakeBackend) Entrants(context.Context, int) ([]models.Participant, []models.Group, error) {
	return f.participants, f.groups, f.loadErr
}

func (f *fakeBackend) GetSchedule(context.Context, int) (map[string]string, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.stored, nil
}

func (f *fakeBackend) SaveSoloSchedule(_ context.Context, _ int, times map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.soloErr == nil {
		f.record("solo", times)
	}
	return f.soloErr
}

func (f *fakeBackend) SaveGroupSchedule(_ context.Context, _ int, times map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupErr == nil {
		f.record("group", times)
	}
	return f.groupErr
}

func (f *fakeBackend) record(bucket string, times map[string]string) {
	if f.saved == nil {
		f.saved = map[string]map[string]string{}
	}
	f.saved[bucket] = times
}

type recorder struct{ got []notify.Notice }

func (r *recorder) Notify(_ context.Context, n notify.Notice) error {
	r.got = append(r.got, n)
	return nil
}

type fakeExporter struct {
	competitionID int
	s             schedule.Schedule
}

func (f *fakeExporter) WriteSchedule(_ context.Context, competitionID int, s schedule.Schedule) error {
	f.competitionID = competitionID
	f.s = s
	return nil
}

func entrants() *fakeBackend {
	return &fakeBackend{
		participants: []models.Participant{
			{ParticipantID: 1, FirstName: "Ana", LastName: "Pop", AgeCategory: models.AgeUnder10},
			{ParticipantID: 2, FirstName: "Ion", LastName: "Dan", AgeCategory: models.AgeUnder10},
		},
		groups: []models.Group{{GroupID: 5, Name: "Stars", AgeCategory: models.AgeUnder10, Type: "Duo"}},
	}
}

func TestPublish_SoloOKGroupFails(t *testing.T) {
	api := entrants()
	api.groupErr = errors.New("503 service unavailable")
	rec := &recorder{}

	s, out, err := New(api, rec, nil, nil).Publish(context.Background(), 8)

	require.NoError(t, err)
	assert.Len(t, s, 3)
	assert.NoError(t, out.Solo)
	assert.Error(t, out.Group)
	assert.Equal(t, map[string]string{"2": "09:00", "1": "09:03"}, api.saved["solo"])
	assert.NotContains(t, api.saved, "group")

	require.Len(t, rec.got, 2)
	assert.Equal(t, notify.Success, rec.got[0].Level)
	assert.Equal(t, notify.Failure, rec.got[1].Level)
}

func TestPublish_LoadFailureWritesNothing(t *testing.T) {
	api := &fakeBackend{loadErr: errors.New("unauthorized")}
	rec := &recorder{}

	_, _, err := New(api, rec, nil, nil).Publish(context.Background(), 8)

	require.Error(t, err)
	assert.Nil(t, api.saved)
	assert.Empty(t, rec.got)
}

func TestExport(t *testing.T) {
	exp := &fakeExporter{}

	s, err := New(entrants(), nil, exp, nil).Export(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, 8, exp.competitionID)
	assert.Equal(t, s, exp.s)

	_, err = New(entrants(), nil, nil, nil).Export(context.Background(), 8)
	assert.Error(t, err)
}

func TestCSV(t *testing.T) {
	s, err := New(entrants(), nil, nil, nil).Preview(context.Background(), 8)
	require.NoError(t, err)

	out, err := CSV(s)

	require.NoError(t, err)
	assert.Equal(t, "time,kind,id,name,age_category,type\n"+
		"09:00,solo,2,Ion Dan,under 10 years,\n"+
		"09:03,solo,1,Ana Pop,under 10 years,\n"+
		"09:06,group,5,Stars,under 10 years,Duo\n", out)
}

func TestStored(t *testing.T) {
	api := entrants()
	api.stored = map[string]string{"solo-2": "09:00"}

	got, err := New(api, nil, nil, nil).Stored(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"solo-2": "09:00"}, got)

	api.loadErr = errors.New("unauthorized")
	_, err = New(api, nil, nil, nil).Stored(context.Background(), 8)
	assert.ErrorContains(t, err, "stored schedule")
}

func TestCSV_QuotesNames(t *testing.T) {
	s := schedule.Generate(nil, []models.Group{{GroupID: 5, Name: `Stars, "Junior"`, AgeCategory: models.AgeUnder10, Type: "Trio"}})

	out, err := CSV(s)

	require.NoError(t, err)
	assert.Contains(t, out, `09:00,group,5,"Stars, ""Junior""",under 10 years,Trio`)
}
