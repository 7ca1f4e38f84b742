package planner

import (
	"errors"
	"testing"
	"time"

	"chronocopy/internal/model"
	"chronocopy/internal/variable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSingleRun(t *testing.T) {
	p := New(variable.DateEvaluator{})
	job := &model.Job{
		Name:           "daily",
		SourceType:     model.LocationLocal,
		TargetType:     model.LocationLocal,
		Source:         `C:\in\[$Region]`,
		Target:         `C:\out`,
		SourceFileMask: "*.csv",
	}
	globals := []model.Variable{
		{Name: "Region", Type: model.VariableStatic, Value: "emea"},
	}

	trigger := Trigger{Type: model.TriggerManual, Date: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}
	specs, err := p.Plan(job, globals, trigger)

	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, trigger.Date, specs[0].Date)
	assert.Equal(t, `C:\in\emea`, specs[0].Source)
	assert.Equal(t, `C:\out`, specs[0].Target)
	assert.Equal(t, "*.csv", specs[0].SourceFileMask)
	assert.Empty(t, specs[0].ResolveErr)
}

func TestPlanTimeTravelExpandsRange(t *testing.T) {
	p := New(variable.DateEvaluator{})
	job := &model.Job{
		Name:              "backfill",
		Source:            `C:\in`,
		Target:            `C:\out\[#RunDate]`,
		TimeTravelEnabled: true,
		TimeTravelFrom:    "2026-01-30",
		TimeTravelTo:      "2026-02-01",
		LocalVariables: []model.Variable{
			{Name: "RunDate", Type: model.VariableDynamic, Expression: "today:yyyyMMdd"},
		},
	}

	specs, err := p.Plan(job, nil, Trigger{Type: model.TriggerManual})
	require.NoError(t, err)
	require.Len(t, specs, 3)

	// One spec per date, ascending, with the dynamic variable tracking the
	// iterated date rather than the wall clock.
	assert.Equal(t, "2026-01-30", specs[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-01-31", specs[1].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-02-01", specs[2].Date.Format("2006-01-02"))

	assert.Equal(t, `C:\out\20260130`, specs[0].Target)
	assert.Equal(t, `C:\out\20260131`, specs[1].Target)
	assert.Equal(t, `C:\out\20260201`, specs[2].Target)
}

func TestPlanRejectsBadRange(t *testing.T) {
	p := New(variable.DateEvaluator{})

	tests := []struct {
		name string
		from string
		to   string
	}{
		{name: "from after to", from: "2026-02-01", to: "2026-01-01"},
		{name: "missing from", from: "", to: "2026-01-01"},
		{name: "malformed from", from: "01/02/2026", to: "2026-02-01"},
		{name: "malformed to", from: "2026-01-01", to: "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &model.Job{
				TimeTravelEnabled: true,
				TimeTravelFrom:    tt.from,
				TimeTravelTo:      tt.to,
			}

			specs, err := p.Plan(job, nil, Trigger{Type: model.TriggerManual})
			assert.Nil(t, specs)

			var rangeErr *RangeError
			assert.True(t, errors.As(err, &rangeErr))
		})
	}
}

func TestPlanMissingPlaceholderMarksSpec(t *testing.T) {
	p := New(variable.DateEvaluator{})
	job := &model.Job{
		Source: `C:\in\[$Nope]`,
		Target: `C:\out`,
	}

	specs, err := p.Plan(job, nil, Trigger{Type: model.TriggerManual, Date: time.Now()})
	require.NoError(t, err)
	require.Len(t, specs, 1)

	assert.Contains(t, specs[0].ResolveErr, `global variable "Nope" not found`)
	// The template survives untouched for the history record.
	assert.Equal(t, `C:\in\[$Nope]`, specs[0].Source)
}

func TestPlanBadDynamicExpression(t *testing.T) {
	p := New(variable.DateEvaluator{})
	job := &model.Job{
		Source: `C:\in\[#Broken]`,
		Target: `C:\out`,
		LocalVariables: []model.Variable{
			{Name: "Broken", Type: model.VariableDynamic, Expression: "nonsense"},
		},
	}

	specs, err := p.Plan(job, nil, Trigger{Type: model.TriggerManual, Date: time.Now()})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Contains(t, specs[0].ResolveErr, "dynamic variable error (Broken)")
}

func TestResolve(t *testing.T) {
	globals := map[string]string{"Region": "emea"}
	locals := map[string]string{"Today": "20260210"}

	resolved, err := Resolve(`[$Region]\x\[#Today]`, globals, locals)
	assert.NoError(t, err)
	assert.Equal(t, `emea\x\20260210`, resolved)

	_, err = Resolve("[$Missing] and [#AlsoMissing]", globals, locals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `global variable "Missing" not found`)
	assert.Contains(t, err.Error(), `local variable "AlsoMissing" not found`)
}
