package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chronocopy/internal/config"
	"chronocopy/internal/copier"
	"chronocopy/internal/logger"
	"chronocopy/internal/planner"
	"chronocopy/internal/repository"
	"chronocopy/internal/runner"
	"chronocopy/internal/scheduler"
	"chronocopy/internal/server"
	"chronocopy/internal/variable"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chronocopy daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		eval := variable.DateEvaluator{}
		hist := repository.NewHistoryRepository(cfg.HistoryLimit)

		run := runner.New(
			planner.New(eval),
			repository.NewJobRepository(),
			repository.NewVariableRepository(),
			hist,
			copier.NewLocal(),
		)

		srv := server.New(run, hist, eval, nil, cfg.Port)
		srv.Start()

		var sched *scheduler.Scheduler
		if cfg.Scheduler {
			sched = scheduler.New(repository.NewScheduleRepository(),
				func(ctx context.Context, jobID uint, trigger planner.Trigger) {
					if _, _, err := run.Start(ctx, jobID, trigger); err != nil {
						logger.Log.Error("scheduled run failed to start",
							zap.Uint("job_id", jobID),
							zap.Error(err))
					}
				})
			if err := sched.Start(); err != nil {
				return err
			}
		}

		watcher, err := config.Watch(func(updated *config.Config) {
			hist.SetLimit(updated.HistoryLimit)
		})
		if err != nil {
			logger.Log.Warn("config watcher unavailable", zap.Error(err))
		} else {
			defer func() {
				_ = watcher.Close()
			}()
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Log.Info("shutting down")
		if sched != nil {
			sched.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
