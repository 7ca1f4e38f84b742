// Package server is the HTTP surface of the daemon: job, schedule, data
// source, and variable management plus run triggering and history queries.
// Audit attribution comes from the caller through the X-Machine-Name header,
// never from ambient process state.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"chronocopy/internal/logger"
	"chronocopy/internal/model"
	"chronocopy/internal/repository"
	"chronocopy/internal/runner"
	"chronocopy/internal/variable"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const machineHeader = "X-Machine-Name"

// ContainerLister discovers the container list of a data source. The real
// adapter lives outside this service; without one, connection tests report
// failure instead of guessing.
type ContainerLister interface {
	ListContainers(ctx context.Context, ds model.DataSource) ([]string, error)
}

type Server struct {
	echo      *echo.Echo
	jobs      *repository.JobRepository
	sources   *repository.DataSourceRepository
	schedules *repository.ScheduleRepository
	vars      *repository.VariableRepository
	hist      *repository.HistoryRepository
	runner    *runner.Runner
	eval      variable.Evaluator
	lister    ContainerLister
	port      int
}

func New(runner *runner.Runner, hist *repository.HistoryRepository, eval variable.Evaluator, lister ContainerLister, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		jobs:      repository.NewJobRepository(),
		sources:   repository.NewDataSourceRepository(),
		schedules: repository.NewScheduleRepository(),
		vars:      repository.NewVariableRepository(),
		hist:      hist,
		runner:    runner,
		eval:      eval,
		lister:    lister,
		port:      port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)

	jobs := s.echo.Group("/jobs")
	jobs.GET("", s.handleListJobs)
	jobs.POST("", s.handleAddJob)
	jobs.POST("/validate", s.handleValidateJob)
	jobs.PUT("/:id", s.handleUpdateJob)
	jobs.DELETE("/:id", s.handleDeleteJob)
	jobs.POST("/:id/run", s.handleRunJob)
	jobs.GET("/:id/run-history", s.handleRunHistory)
	jobs.GET("/:id/run-history-archives", s.handleRunHistoryArchives)
	jobs.GET("/:id/variables", s.handleListLocalVariables)
	jobs.POST("/:id/variables", s.handleAddLocalVariable)
	jobs.PUT("/:id/variables/:varId", s.handleUpdateVariable)
	jobs.DELETE("/:id/variables/:varId", s.handleDeleteVariable)
	jobs.POST("/:id/variables/:varId/refresh", s.handleRefreshVariable)

	schedules := s.echo.Group("/schedules")
	schedules.GET("", s.handleListSchedules)
	schedules.POST("", s.handleAddSchedule)
	schedules.PUT("/:id", s.handleUpdateSchedule)
	schedules.DELETE("/:id", s.handleDeleteSchedule)
	schedules.POST("/:id/pause", s.handlePauseSchedule)
	schedules.POST("/:id/resume", s.handleResumeSchedule)

	sources := s.echo.Group("/datasources")
	sources.GET("", s.handleListDataSources)
	sources.POST("", s.handleAddDataSource)
	sources.PUT("/:id", s.handleUpdateDataSource)
	sources.DELETE("/:id", s.handleDeleteDataSource)
	sources.POST("/test", s.handleTestDataSource)

	vars := s.echo.Group("/variables")
	vars.GET("", s.handleListGlobalVariables)
	vars.POST("", s.handleAddGlobalVariable)
	vars.PUT("/:varId", s.handleUpdateVariable)
	vars.DELETE("/:varId", s.handleDeleteVariable)
	vars.POST("/:varId/refresh", s.handleRefreshVariable)
	vars.POST("/refresh", s.handleRefreshAllVariables)
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.port)
		logger.Log.Info("server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func machineName(c echo.Context) string {
	return c.Request().Header.Get(machineHeader)
}
