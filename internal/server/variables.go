package server

import (
	"errors"
	"net/http"
	"time"

	"chronocopy/internal/model"
	"chronocopy/internal/repository"

	"github.com/labstack/echo/v4"
)

type variablePayload struct {
	Name       string             `json:"name"`
	Type       model.VariableType `json:"type"`
	Value      string             `json:"value"`
	Expression string             `json:"expression"`
}

func (p *variablePayload) valid() string {
	if p.Name == "" {
		return "name required"
	}
	switch p.Type {
	case model.VariableStatic:
		if p.Expression != "" {
			return "static variables take no expression"
		}
	case model.VariableDynamic:
		if p.Expression == "" {
			return "dynamic variables require an expression"
		}
	default:
		return "type must be static or dynamic"
	}
	return ""
}

func (s *Server) handleListGlobalVariables(c echo.Context) error {
	vars, err := s.vars.Globals()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, vars)
}

func (s *Server) handleAddGlobalVariable(c echo.Context) error {
	return s.addVariable(c, nil)
}

func (s *Server) handleListLocalVariables(c echo.Context) error {
	jobID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	vars, err := s.vars.ForJob(jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, vars)
}

func (s *Server) handleAddLocalVariable(c echo.Context) error {
	jobID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if _, err := s.jobs.GetByID(jobID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return s.addVariable(c, &jobID)
}

func (s *Server) addVariable(c echo.Context, jobID *uint) error {
	var payload variablePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed variable"})
	}
	if msg := payload.valid(); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	v := model.Variable{
		JobID:      jobID,
		Name:       payload.Name,
		Type:       payload.Type,
		Value:      payload.Value,
		Expression: payload.Expression,
	}
	if err := s.vars.Create(&v); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "variable name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, v)
}

func (s *Server) handleUpdateVariable(c echo.Context) error {
	id, err := pathID(c, "varId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	v, err := s.vars.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "variable not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var payload variablePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed variable"})
	}
	if msg := payload.valid(); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	v.Name = payload.Name
	v.Type = payload.Type
	v.Value = payload.Value
	v.Expression = payload.Expression

	if err := s.vars.Update(&v); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "variable name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleDeleteVariable(c echo.Context) error {
	id, err := pathID(c, "varId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.vars.Delete(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

// handleRefreshVariable re-evaluates one dynamic variable now. Dynamic
// values are otherwise stale: nothing recomputes them implicitly.
func (s *Server) handleRefreshVariable(c echo.Context) error {
	id, err := pathID(c, "varId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	v, err := s.vars.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "variable not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if v.Type != model.VariableDynamic {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "only dynamic variables can be refreshed"})
	}

	value, err := s.eval.Eval(v.Expression, time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.vars.SetValue(v.ID, value); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	v.Value = value
	return c.JSON(http.StatusOK, v)
}

// handleRefreshAllVariables re-evaluates every dynamic global variable.
// Failures are reported per variable; the rest still refresh.
func (s *Server) handleRefreshAllVariables(c echo.Context) error {
	vars, err := s.vars.Globals()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	failures := map[string]string{}
	refreshed := 0
	now := time.Now()

	for _, v := range vars {
		if v.Type != model.VariableDynamic {
			continue
		}

		value, err := s.eval.Eval(v.Expression, now)
		if err != nil {
			failures[v.Name] = err.Error()
			continue
		}
		if err := s.vars.SetValue(v.ID, value); err != nil {
			failures[v.Name] = err.Error()
			continue
		}
		refreshed++
	}

	return c.JSON(http.StatusOK, map[string]any{
		"refreshed": refreshed,
		"failures":  failures,
	})
}
