// Package runner turns a trigger into a recorded run: it plans the batch,
// opens the history record, dispatches every sub-run to the copy engine
// concurrently, and folds the results back into history. Execution failures
// are recorded per sub-run and never abort siblings.
package runner

import (
	"context"
	"fmt"

	"chronocopy/internal/logger"
	"chronocopy/internal/model"
	"chronocopy/internal/planner"
	"chronocopy/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

// Result is what the copy engine reports for one sub-run.
type Result struct {
	SourceFiles []string
	CopiedFiles []string
	Message     string
}

// Executor is the external copy engine. It enumerates and copies files for
// one resolved spec; implementations run concurrently across sub-runs.
type Executor interface {
	Execute(ctx context.Context, job *model.Job, spec planner.SubRunSpec) (Result, error)
}

// ExecFunc adapts a function to the Executor interface.
type ExecFunc func(ctx context.Context, job *model.Job, spec planner.SubRunSpec) (Result, error)

func (f ExecFunc) Execute(ctx context.Context, job *model.Job, spec planner.SubRunSpec) (Result, error) {
	return f(ctx, job, spec)
}

type Runner struct {
	planner *planner.Planner
	jobs    *repository.JobRepository
	vars    *repository.VariableRepository
	hist    *repository.HistoryRepository
	exec    Executor
}

func New(p *planner.Planner, jobs *repository.JobRepository, vars *repository.VariableRepository, hist *repository.HistoryRepository, exec Executor) *Runner {
	return &Runner{planner: p, jobs: jobs, vars: vars, hist: hist, exec: exec}
}

// Run executes one trigger to completion and returns the run id.
func (r *Runner) Run(ctx context.Context, jobID uint, trigger planner.Trigger) (string, error) {
	runID, done, err := r.Start(ctx, jobID, trigger)
	if err != nil {
		return "", err
	}
	<-done
	return runID, nil
}

// Start plans the batch and opens the history record synchronously, then
// executes the sub-runs in the background; done is closed once the record is
// finalized. Planning failures are returned before any state is written; no
// partial batch is ever recorded from invalid input. Concurrent runs for the
// same job are allowed.
func (r *Runner) Start(ctx context.Context, jobID uint, trigger planner.Trigger) (string, <-chan struct{}, error) {
	job, err := r.jobs.GetByID(jobID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load job %d: %w", jobID, err)
	}

	globals, err := r.vars.Globals()
	if err != nil {
		return "", nil, fmt.Errorf("failed to load global variables: %w", err)
	}

	specs, err := r.planner.Plan(&job, globals, trigger)
	if err != nil {
		return "", nil, err
	}

	rec := &model.RunRecord{
		RunID:       uuid.NewString(),
		JobID:       job.ID,
		TriggerType: trigger.Type,
		SchedulerID: trigger.SchedulerID,
		TimeTravel:  job.TimeTravelEnabled,
	}
	if rec.TimeTravel {
		rec.FromDate = job.TimeTravelFrom
		rec.ToDate = job.TimeTravelTo
		for _, spec := range specs {
			rec.SubRuns = append(rec.SubRuns, model.SubRun{
				Date: spec.Date.Format(dateLayout),
			})
		}
	}

	if err := r.hist.StartRun(rec); err != nil {
		return "", nil, fmt.Errorf("failed to record run start: %w", err)
	}

	logger.Log.Info("run started",
		zap.String("run_id", rec.RunID),
		zap.Uint("job_id", job.ID),
		zap.String("trigger", string(trigger.Type)),
		zap.Int("sub_runs", len(specs)))

	done := make(chan struct{})
	go func() {
		defer close(done)

		g, ctx := errgroup.WithContext(ctx)
		for _, spec := range specs {
			spec := spec
			g.Go(func() error {
				r.runOne(ctx, &job, rec.RunID, spec)
				return nil
			})
		}
		_ = g.Wait()

		if err := r.hist.Rotate(job.ID); err != nil {
			logger.Log.Warn("history rotation failed",
				zap.Uint("job_id", job.ID),
				zap.Error(err))
		}
	}()

	return rec.RunID, done, nil
}

func (r *Runner) runOne(ctx context.Context, job *model.Job, runID string, spec planner.SubRunSpec) {
	date := spec.Date.Format(dateLayout)

	if spec.ResolveErr != "" {
		r.record(runID, date, model.RunFailed, spec.ResolveErr, spec.SourceFileMask, nil, nil)
		return
	}

	result, err := r.exec.Execute(ctx, job, spec)
	if err != nil {
		r.record(runID, date, model.RunFailed, fmt.Sprintf("copy failed: %v", err), spec.SourceFileMask, result.SourceFiles, result.CopiedFiles)
		return
	}

	message := result.Message
	if message == "" {
		message = fmt.Sprintf("copied %d files for date %s", len(result.CopiedFiles), date)
	}
	r.record(runID, date, model.RunSuccess, message, spec.SourceFileMask, result.SourceFiles, result.CopiedFiles)
}

func (r *Runner) record(runID, date string, status model.RunStatus, message, mask string, sourceFiles, copiedFiles []string) {
	if err := r.hist.RecordResult(runID, date, status, message, mask, sourceFiles, copiedFiles); err != nil {
		logger.Log.Error("failed to record sub-run result",
			zap.String("run_id", runID),
			zap.String("date", date),
			zap.Error(err))
	}
}
