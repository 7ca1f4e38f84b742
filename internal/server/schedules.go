package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"chronocopy/internal/model"
	"chronocopy/internal/recurrence"
	"chronocopy/internal/repository"

	"github.com/labstack/echo/v4"
)

type schedulePayload struct {
	Name       string          `json:"name"`
	JobID      uint            `json:"jobId"`
	Recurrence json.RawMessage `json:"recurrence"`
}

// decodeRule parses and validates the tagged recurrence union; a schedule
// carries exactly one rule variant.
func decodeRule(raw json.RawMessage) (recurrence.Rule, map[string]any, int) {
	rule, err := recurrence.Unmarshal(raw)
	if err != nil {
		return nil, map[string]any{"error": err.Error()}, http.StatusBadRequest
	}

	if errs := rule.Validate(); len(errs) > 0 {
		return nil, map[string]any{"errors": errs}, http.StatusBadRequest
	}

	return rule, nil, 0
}

func (s *Server) handleListSchedules(c echo.Context) error {
	schedules, err := s.schedules.GetAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, schedules)
}

func (s *Server) handleAddSchedule(c echo.Context) error {
	var payload schedulePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed schedule"})
	}
	if payload.Name == "" || payload.JobID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and jobId required"})
	}

	if _, body, code := decodeRule(payload.Recurrence); body != nil {
		return c.JSON(code, body)
	}

	if _, err := s.jobs.GetByID(payload.JobID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "job not found"})
	}

	schedule := model.Schedule{
		Name:       payload.Name,
		JobID:      payload.JobID,
		Recurrence: payload.Recurrence,
	}
	if err := s.schedules.Create(&schedule); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "a scheduler with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, schedule)
}

func (s *Server) handleUpdateSchedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	schedule, err := s.schedules.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var payload schedulePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed schedule"})
	}
	if payload.Name == "" || payload.JobID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and jobId required"})
	}

	if _, body, code := decodeRule(payload.Recurrence); body != nil {
		return c.JSON(code, body)
	}

	if _, err := s.jobs.GetByID(payload.JobID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "job not found"})
	}

	schedule.Name = payload.Name
	schedule.JobID = payload.JobID
	schedule.Recurrence = payload.Recurrence

	if err := s.schedules.Update(&schedule); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "a scheduler with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, schedule)
}

func (s *Server) handleDeleteSchedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.schedules.Delete(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlePauseSchedule(c echo.Context) error {
	return s.setPaused(c, true)
}

func (s *Server) handleResumeSchedule(c echo.Context) error {
	return s.setPaused(c, false)
}

func (s *Server) setPaused(c echo.Context, paused bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.schedules.SetPaused(id, paused); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	status := "resumed"
	if paused {
		status = "paused"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}
