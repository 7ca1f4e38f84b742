// Package scheduler fires due schedules. A minute tick evaluates every
// unpaused schedule in its own timezone; the recurrence rules decide whether
// the schedule is due. Cron only supplies the tick, the rule model is ours.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chronocopy/internal/logger"
	"chronocopy/internal/model"
	"chronocopy/internal/planner"
	"chronocopy/internal/recurrence"
	"chronocopy/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunFunc triggers one job run; the scheduler never waits on it.
type RunFunc func(ctx context.Context, jobID uint, trigger planner.Trigger)

type Scheduler struct {
	schedules *repository.ScheduleRepository
	run       RunFunc
	cron      *cron.Cron

	mu        sync.Mutex
	lastFired map[uint]string
}

func New(schedules *repository.ScheduleRepository, run RunFunc) *Scheduler {
	return &Scheduler{
		schedules: schedules,
		run:       run,
		cron:      cron.New(),
		lastFired: make(map[uint]string),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		s.tick(time.Now())
	}); err != nil {
		return fmt.Errorf("failed to register scheduler tick: %w", err)
	}

	s.cron.Start()
	logger.Log.Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

// tick fires every due schedule at most once per matching minute.
func (s *Scheduler) tick(now time.Time) {
	schedules, err := s.schedules.GetActive()
	if err != nil {
		logger.Log.Error("failed to load schedules", zap.Error(err))
		return
	}

	for _, sch := range schedules {
		due, local, err := s.due(&sch, now)
		if err != nil {
			logger.Log.Warn("skipping schedule",
				zap.Uint("schedule_id", sch.ID),
				zap.Error(err))
			continue
		}
		if !due {
			continue
		}

		minute := local.Format("2006-01-02 15:04")
		s.mu.Lock()
		if s.lastFired[sch.ID] == minute {
			s.mu.Unlock()
			continue
		}
		s.lastFired[sch.ID] = minute
		s.mu.Unlock()

		logger.Log.Info("schedule due",
			zap.Uint("schedule_id", sch.ID),
			zap.Uint("job_id", sch.JobID),
			zap.String("minute", minute))

		schedulerID := sch.ID
		s.run(context.Background(), sch.JobID, planner.Trigger{
			Type:        model.TriggerScheduled,
			SchedulerID: &schedulerID,
			Date:        local,
		})
	}
}

// due evaluates the schedule's rule at now, converted to the rule's zone.
func (s *Scheduler) due(sch *model.Schedule, now time.Time) (bool, time.Time, error) {
	rule, err := recurrence.Unmarshal(sch.Recurrence)
	if err != nil {
		return false, time.Time{}, err
	}

	loc, err := rule.Location()
	if err != nil {
		return false, time.Time{}, fmt.Errorf("bad timezone: %w", err)
	}

	local := now.In(loc)
	return rule.Matches(local), local, nil
}
