package server

import (
	"errors"
	"net/http"

	"chronocopy/internal/model"
	"chronocopy/internal/repository"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleListDataSources(c echo.Context) error {
	sources, err := s.sources.GetAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// Credentials never leave the service.
	for i := range sources {
		sources[i].AccountKey = ""
		sources[i].SASToken = ""
	}

	return c.JSON(http.StatusOK, sources)
}

func (s *Server) handleAddDataSource(c echo.Context) error {
	var ds model.DataSource
	if err := c.Bind(&ds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed data source"})
	}
	if ds.Name == "" || ds.Type != model.DataSourceADLS {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and a supported type are required"})
	}

	if err := s.sources.Create(&ds); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "data source name already exists"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ds.AccountKey = ""
	ds.SASToken = ""
	return c.JSON(http.StatusCreated, ds)
}

func (s *Server) handleUpdateDataSource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ds, err := s.sources.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "data source not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var payload model.DataSource
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed data source"})
	}

	ds.Name = payload.Name
	ds.AccountName = payload.AccountName
	ds.AccountKey = payload.AccountKey
	ds.SASToken = payload.SASToken
	ds.Container = payload.Container

	if err := s.sources.Update(&ds); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "data source name already exists"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ds.AccountKey = ""
	ds.SASToken = ""
	return c.JSON(http.StatusOK, ds)
}

func (s *Server) handleDeleteDataSource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.sources.Delete(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

// handleTestDataSource exercises the configured adapter against the given
// connection details and reports the discovered containers on success.
func (s *Server) handleTestDataSource(c echo.Context) error {
	var ds model.DataSource
	if err := c.Bind(&ds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed data source"})
	}

	if ds.Type != model.DataSourceADLS {
		return c.JSON(http.StatusOK, map[string]any{
			"success": false,
			"message": "unsupported data source type",
		})
	}
	if s.lister == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"success": false,
			"message": "no data lake adapter configured",
		})
	}

	containers, err := s.lister.ListContainers(c.Request().Context(), ds)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"message":    "connection ok",
		"containers": containers,
	})
}
