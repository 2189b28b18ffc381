package schedule

import (
	"context"
	"strconv"
	"sync"
)

// Writer persists one bucket of a competition schedule.
type Writer interface {
	SaveSoloSchedule(ctx context.Context, competitionID int, times map[string]string) error
	SaveGroupSchedule(ctx context.Context, competitionID int, times map[string]string) error
}

// SaveOutcome keeps the result of each bucket write apart. One may succeed while
// the other fails; nothing is rolled back.
type SaveOutcome struct {
	Solo  error
	Group error
}

func (o SaveOutcome) OK() bool {
	return o.Solo == nil && o.Group == nil
}

// Save writes both buckets concurrently and waits for both.
func Save(ctx context.Context, w Writer, competitionID int, s Schedule) SaveOutcome {
	solo, group := s.Split()

	var (
		out SaveOutcome
		wg  sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Solo = w.SaveSoloSchedule(ctx, competitionID, solo)
	}()
	go func() {
		defer wg.Done()
		out.Group = w.SaveGroupSchedule(ctx, competitionID, group)
	}()
	wg.Wait()
	return out
}

func idString(id int) string {
	return strconv.Itoa(id)
}
