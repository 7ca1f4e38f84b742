package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"chronocopy/internal/model"
	"chronocopy/internal/planner"
	"chronocopy/internal/repository"

	"github.com/labstack/echo/v4"
)

type runRequest struct {
	TriggerType model.TriggerType `json:"triggerType"`
	SchedulerID *uint             `json:"schedulerId"`
}

// handleRunJob fires a run and returns its id right away; the client polls
// the history endpoint until the record reaches a terminal status. There is
// no at-most-one-run lock per job.
func (s *Server) handleRunJob(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	req := runRequest{TriggerType: model.TriggerManual}
	_ = c.Bind(&req)
	if req.TriggerType == "" {
		req.TriggerType = model.TriggerManual
	}

	// Not the request context: execution outlives the response.
	runID, _, err := s.runner.Start(context.Background(), id, planner.Trigger{
		Type:        req.TriggerType,
		SchedulerID: req.SchedulerID,
	})
	if err != nil {
		var rangeErr *planner.RangeError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		case errors.As(err, &rangeErr):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": rangeErr.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusAccepted, map[string]string{"runId": runID})
}

func (s *Server) handleRunHistory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	archive := model.ArchiveMain
	if raw := c.QueryParam("archive"); raw != "" && raw != "main" {
		archive, err = strconv.Atoi(raw)
		if err != nil || archive < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid archive"})
		}
	}

	records, err := s.hist.History(id, archive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleRunHistoryArchives(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	archives, err := s.hist.Archives(id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"archives": archives})
}
