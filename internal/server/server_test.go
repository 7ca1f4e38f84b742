package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chronocopy/internal/db"
	"chronocopy/internal/model"
	"chronocopy/internal/planner"
	"chronocopy/internal/repository"
	"chronocopy/internal/runner"
	"chronocopy/internal/variable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	require.NoError(t, db.Init(":memory:"))

	exec := runner.ExecFunc(func(ctx context.Context, job *model.Job, spec planner.SubRunSpec) (runner.Result, error) {
		return runner.Result{CopiedFiles: []string{"a.csv"}}, nil
	})

	hist := repository.NewHistoryRepository(50)
	run := runner.New(
		planner.New(variable.DateEvaluator{}),
		repository.NewJobRepository(),
		repository.NewVariableRepository(),
		hist,
		exec,
	)

	return New(run, hist, variable.DateEvaluator{}, nil, 0)
}

func do(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echoContentType, echoJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

const (
	echoContentType = "Content-Type"
	echoJSON        = "application/json"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestAddJobRecordsAuditIdentity(t *testing.T) {
	s := testServer(t)

	body := `{"name":"daily","sourceType":"local","targetType":"local",` +
		`"source":"C:\\in\\data","target":"C:\\out\\data","sourceFileMask":"*.csv"}`
	rec := do(s, http.MethodPost, "/jobs", body, map[string]string{machineHeader: "build-agent-02"})

	require.Equal(t, http.StatusCreated, rec.Code)

	var job model.Job
	decode(t, rec, &job)
	assert.Equal(t, "build-agent-02", job.CreatedBy)
	assert.Equal(t, "build-agent-02", job.UpdatedBy)
}

func TestAddJobValidationErrors(t *testing.T) {
	s := testServer(t)

	body := `{"name":"bad","sourceType":"local","targetType":"local",` +
		`"source":"C:\\in\\report.csv","target":"no-drive","targetFileMask":"out.csv"}`
	rec := do(s, http.MethodPost, "/jobs", body, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var result struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	decode(t, rec, &result)

	var fields []string
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "source")
	assert.Contains(t, fields, "target")
	assert.Contains(t, fields, "targetFileMask")
}

func TestValidateJobDoesNotPersist(t *testing.T) {
	s := testServer(t)

	body := `{"name":"check","sourceType":"local","targetType":"local",` +
		`"source":"C:\\in\\data","target":"C:\\out\\data"}`
	rec := do(s, http.MethodPost, "/jobs/validate", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	jobs, err := repository.NewJobRepository().GetAll()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestRunJobAccepted(t *testing.T) {
	s := testServer(t)

	job := model.Job{Name: "daily", Source: `C:\in`, Target: `C:\out`}
	require.NoError(t, repository.NewJobRepository().Create(&job))

	rec := do(s, http.MethodPost, "/jobs/1/run", "", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var result map[string]string
	decode(t, rec, &result)
	assert.NotEmpty(t, result["runId"])

	// The record exists before execution finishes.
	waitForTerminal(t, s, job.ID)
}

func TestRunJobNotFound(t *testing.T) {
	s := testServer(t)

	rec := do(s, http.MethodPost, "/jobs/42/run", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunJobBadRange(t *testing.T) {
	s := testServer(t)

	job := model.Job{
		Name:              "backfill",
		Source:            `C:\in`,
		Target:            `C:\out`,
		TimeTravelEnabled: true,
		TimeTravelFrom:    "2026-02-01",
		TimeTravelTo:      "2026-01-01",
	}
	require.NoError(t, repository.NewJobRepository().Create(&job))

	rec := do(s, http.MethodPost, "/jobs/1/run", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var result map[string]string
	decode(t, rec, &result)
	assert.Contains(t, result["error"], "invalid time travel range")
}

func TestRunHistoryArchiveParam(t *testing.T) {
	s := testServer(t)

	rec := do(s, http.MethodGet, "/jobs/1/run-history?archive=main", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/jobs/1/run-history?archive=2", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/jobs/1/run-history?archive=old", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddScheduleRejectsBadRule(t *testing.T) {
	s := testServer(t)

	job := model.Job{Name: "daily", Source: `C:\in`, Target: `C:\out`}
	require.NoError(t, repository.NewJobRepository().Create(&job))

	body := `{"name":"nightly","jobId":1,` +
		`"recurrence":{"type":"custom","rule":{"kind":"business_day_quarter","x":63,"y":4,"time":"09:00","timezone":"UTC"}}}`
	rec := do(s, http.MethodPost, "/schedules", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"name":"nightly","jobId":1,` +
		`"recurrence":{"type":"custom","rule":{"kind":"business_day_quarter","x":62,"y":4,"time":"09:00","timezone":"UTC"}}}`
	rec = do(s, http.MethodPost, "/schedules", body, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateScheduleRejectsBlankNameAndMissingJob(t *testing.T) {
	s := testServer(t)

	job := model.Job{Name: "daily", Source: `C:\in`, Target: `C:\out`}
	require.NoError(t, repository.NewJobRepository().Create(&job))

	rule := `{"type":"weekly","rule":{"weekdays":["Monday"],"time":"09:00","timezone":"UTC"}}`
	rec := do(s, http.MethodPost, "/schedules", `{"name":"nightly","jobId":1,"recurrence":`+rule+`}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(s, http.MethodPut, "/schedules/1", `{"name":"","jobId":1,"recurrence":`+rule+`}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Updating must not repoint the schedule at a job that does not exist.
	rec = do(s, http.MethodPut, "/schedules/1", `{"name":"nightly","jobId":99,"recurrence":`+rule+`}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPut, "/schedules/1", `{"name":"nightly-2","jobId":1,"recurrence":`+rule+`}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshVariable(t *testing.T) {
	s := testServer(t)

	v := model.Variable{Name: "Today", Type: model.VariableDynamic, Expression: "today:yyyyMMdd"}
	require.NoError(t, repository.NewVariableRepository().Create(&v))

	rec := do(s, http.MethodPost, "/variables/1/refresh", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed model.Variable
	decode(t, rec, &refreshed)
	assert.Equal(t, time.Now().Format("20060102"), refreshed.Value)

	// Static variables cannot be refreshed.
	st := model.Variable{Name: "Region", Type: model.VariableStatic, Value: "emea"}
	require.NoError(t, repository.NewVariableRepository().Create(&st))

	rec = do(s, http.MethodPost, "/variables/2/refresh", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func waitForTerminal(t *testing.T, s *Server, jobID uint) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		latest, err := s.hist.Latest(jobID)
		require.NoError(t, err)
		if latest != nil && latest.Status.Terminal() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run never reached a terminal status")
}
