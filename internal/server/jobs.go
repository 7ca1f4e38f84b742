package server

import (
	"errors"
	"net/http"
	"time"

	"chronocopy/internal/model"
	"chronocopy/internal/repository"
	"chronocopy/internal/validate"

	"github.com/labstack/echo/v4"
)

type jobPayload struct {
	Name              string             `json:"name"`
	SourceType        model.LocationType `json:"sourceType"`
	TargetType        model.LocationType `json:"targetType"`
	Source            string             `json:"source"`
	Target            string             `json:"target"`
	SourceFileMask    string             `json:"sourceFileMask"`
	TargetFileMask    string             `json:"targetFileMask"`
	SourceAzureID     *uint              `json:"sourceAzureId"`
	TargetAzureID     *uint              `json:"targetAzureId"`
	SourceContainer   string             `json:"sourceContainer"`
	TargetContainer   string             `json:"targetContainer"`
	TimeTravelEnabled bool               `json:"timeTravelEnabled"`
	TimeTravelFrom    string             `json:"timeTravelFrom"`
	TimeTravelTo      string             `json:"timeTravelTo"`
}

func (p *jobPayload) apply(job *model.Job) {
	job.Name = p.Name
	job.SourceType = p.SourceType
	job.TargetType = p.TargetType
	job.Source = p.Source
	job.Target = p.Target
	job.SourceFileMask = p.SourceFileMask
	job.TargetFileMask = p.TargetFileMask
	job.SourceAzureID = p.SourceAzureID
	job.TargetAzureID = p.TargetAzureID
	job.SourceContainer = p.SourceContainer
	job.TargetContainer = p.TargetContainer
	job.TimeTravelEnabled = p.TimeTravelEnabled
	job.TimeTravelFrom = p.TimeTravelFrom
	job.TimeTravelTo = p.TimeTravelTo
}

type latestRunResult struct {
	Status           model.RunStatus `json:"status"`
	Message          string          `json:"message"`
	CopiedFilesCount int             `json:"copiedFilesCount"`
	Timestamp        time.Time       `json:"timestamp"`
}

type jobWithLatest struct {
	model.Job
	LatestRunResult *latestRunResult `json:"latestRunResult"`
}

func (s *Server) handleListJobs(c echo.Context) error {
	jobs, err := s.jobs.GetAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	out := make([]jobWithLatest, 0, len(jobs))
	for _, job := range jobs {
		entry := jobWithLatest{Job: job}
		latest, err := s.hist.Latest(job.ID)
		if err == nil && latest != nil {
			copied := len(latest.CopiedFiles)
			for _, sub := range latest.SubRuns {
				copied += len(sub.CopiedFiles)
			}
			entry.LatestRunResult = &latestRunResult{
				Status:           latest.Status,
				Message:          latest.Message,
				CopiedFilesCount: copied,
				Timestamp:        latest.Timestamp,
			}
		}
		out = append(out, entry)
	}

	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleAddJob(c echo.Context) error {
	var payload jobPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed job"})
	}

	var job model.Job
	payload.apply(&job)

	if errs := validate.Job(&job); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"errors": errs})
	}

	job.CreatedBy = machineName(c)
	job.UpdatedBy = machineName(c)

	if err := s.jobs.Create(&job); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "a job with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, job)
}

// handleValidateJob runs path and mask validation without persisting,
// so forms can check templates as the user types.
func (s *Server) handleValidateJob(c echo.Context) error {
	var payload jobPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed job"})
	}

	var job model.Job
	payload.apply(&job)

	return c.JSON(http.StatusOK, map[string]any{"errors": validate.Job(&job)})
}

func (s *Server) handleUpdateJob(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	job, err := s.jobs.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var payload jobPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed job"})
	}
	payload.apply(&job)

	if errs := validate.Job(&job); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"errors": errs})
	}

	job.UpdatedBy = machineName(c)

	if err := s.jobs.Update(&job); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "a job with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleDeleteJob(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.jobs.Delete(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}
