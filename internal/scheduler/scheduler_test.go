package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"chronocopy/internal/db"
	"chronocopy/internal/model"
	"chronocopy/internal/planner"
	"chronocopy/internal/recurrence"
	"chronocopy/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firedRuns struct {
	mu   sync.Mutex
	jobs []uint
}

func (f *firedRuns) run(ctx context.Context, jobID uint, trigger planner.Trigger) {
	f.mu.Lock()
	f.jobs = append(f.jobs, jobID)
	f.mu.Unlock()
}

func (f *firedRuns) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func addSchedule(t *testing.T, name string, jobID uint, rule recurrence.Rule, paused bool) uint {
	t.Helper()

	raw, err := recurrence.Marshal(rule)
	require.NoError(t, err)

	s := model.Schedule{Name: name, JobID: jobID, Paused: paused, Recurrence: raw}
	require.NoError(t, repository.NewScheduleRepository().Create(&s))
	return s.ID
}

func TestTickFiresDueSchedule(t *testing.T) {
	require.NoError(t, db.Init(":memory:"))

	// Monday 2026-03-02 09:30 UTC.
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	addSchedule(t, "due", 1,
		recurrence.Weekly{Weekdays: []string{"Monday"}, Time: "09:30", Timezone: "UTC"}, false)
	addSchedule(t, "wrong time", 2,
		recurrence.Weekly{Weekdays: []string{"Monday"}, Time: "10:00", Timezone: "UTC"}, false)
	addSchedule(t, "paused", 3,
		recurrence.Weekly{Weekdays: []string{"Monday"}, Time: "09:30", Timezone: "UTC"}, true)

	fired := &firedRuns{}
	s := New(repository.NewScheduleRepository(), fired.run)

	s.tick(now)

	require.Equal(t, 1, fired.count())
	assert.Equal(t, uint(1), fired.jobs[0])
}

func TestTickFiresOncePerMinute(t *testing.T) {
	require.NoError(t, db.Init(":memory:"))

	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	addSchedule(t, "due", 1,
		recurrence.Weekly{Weekdays: []string{"Monday"}, Time: "09:30", Timezone: "UTC"}, false)

	fired := &firedRuns{}
	s := New(repository.NewScheduleRepository(), fired.run)

	// The tick may land on the same minute more than once.
	s.tick(now)
	s.tick(now.Add(20 * time.Second))
	assert.Equal(t, 1, fired.count())

	// A week later the same minute matches again.
	s.tick(now.AddDate(0, 0, 7))
	assert.Equal(t, 2, fired.count())
}

func TestTickEvaluatesRuleInItsZone(t *testing.T) {
	require.NoError(t, db.Init(":memory:"))

	// 04:00 UTC on Monday is 09:30 in Kolkata (+05:30).
	now := time.Date(2026, 3, 2, 4, 0, 0, 0, time.UTC)
	addSchedule(t, "kolkata", 1,
		recurrence.Weekly{Weekdays: []string{"Monday"}, Time: "09:30", Timezone: "Asia/Kolkata"}, false)

	fired := &firedRuns{}
	s := New(repository.NewScheduleRepository(), fired.run)

	s.tick(now)
	assert.Equal(t, 1, fired.count())
}

func TestTickSkipsMalformedRule(t *testing.T) {
	require.NoError(t, db.Init(":memory:"))

	s := model.Schedule{Name: "broken", JobID: 1, Recurrence: []byte(`{"type":"cron"}`)}
	require.NoError(t, repository.NewScheduleRepository().Create(&s))

	fired := &firedRuns{}
	sch := New(repository.NewScheduleRepository(), fired.run)

	sch.tick(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	assert.Zero(t, fired.count())
}
