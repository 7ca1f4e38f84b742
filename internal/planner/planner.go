// Package planner expands one trigger into the ordered list of sub-run
// specs a copy engine will execute. Planning is pure computation: no I/O, no
// state, and a malformed time-travel range aborts before anything is planned.
package planner

import (
	"fmt"
	"time"

	"chronocopy/internal/model"
	"chronocopy/internal/variable"
)

const dateLayout = "2006-01-02"

// Trigger is one firing of a job, manual or scheduled.
type Trigger struct {
	Type        model.TriggerType
	SchedulerID *uint
	// Date is the occurrence date; zero means "now".
	Date time.Time
}

// SubRunSpec is one date-scoped execution unit with its templates fully
// resolved. ResolveErr carries a placeholder-resolution failure: the runner
// records such a spec as a failed sub-run without executing it, so one bad
// date never aborts its siblings.
type SubRunSpec struct {
	Date            time.Time
	Source          string
	Target          string
	SourceFileMask  string
	TargetFileMask  string
	SourceContainer string
	TargetContainer string
	ResolveErr      string
}

// RangeError reports a malformed time-travel range. Nothing is planned when
// one is returned.
type RangeError struct {
	Reason string
}

func (e *RangeError) Error() string {
	return "invalid time travel range: " + e.Reason
}

type Planner struct {
	eval variable.Evaluator
}

func New(eval variable.Evaluator) *Planner {
	return &Planner{eval: eval}
}

// Plan expands the trigger into sub-run specs, one per date, ascending. A
// job without time travel plans exactly one spec for the trigger date.
func (p *Planner) Plan(job *model.Job, globals []model.Variable, trigger Trigger) ([]SubRunSpec, error) {
	dates, err := p.dates(job, trigger)
	if err != nil {
		return nil, err
	}

	globalValues := make(map[string]string, len(globals))
	for _, v := range globals {
		globalValues[v.Name] = v.Value
	}

	specs := make([]SubRunSpec, 0, len(dates))
	for _, date := range dates {
		specs = append(specs, p.specFor(job, globalValues, date))
	}

	return specs, nil
}

func (p *Planner) dates(job *model.Job, trigger Trigger) ([]time.Time, error) {
	if !job.TimeTravelEnabled {
		date := trigger.Date
		if date.IsZero() {
			date = time.Now()
		}
		return []time.Time{date}, nil
	}

	if job.TimeTravelFrom == "" || job.TimeTravelTo == "" {
		return nil, &RangeError{Reason: "both from and to dates are required"}
	}

	from, err := time.Parse(dateLayout, job.TimeTravelFrom)
	if err != nil {
		return nil, &RangeError{Reason: "malformed from date: " + job.TimeTravelFrom}
	}
	to, err := time.Parse(dateLayout, job.TimeTravelTo)
	if err != nil {
		return nil, &RangeError{Reason: "malformed to date: " + job.TimeTravelTo}
	}
	if from.After(to) {
		return nil, &RangeError{Reason: "from date is after to date"}
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// specFor builds the spec for one date. Dynamic local variables are
// re-evaluated against that date, so a variable like "today as yyyyMMdd"
// tracks the iterated date instead of the trigger date.
func (p *Planner) specFor(job *model.Job, globals map[string]string, date time.Time) SubRunSpec {
	locals := make(map[string]string, len(job.LocalVariables))
	var resolveErr string

	for _, v := range job.LocalVariables {
		if v.Type == model.VariableDynamic {
			value, err := p.eval.Eval(v.Expression, date)
			if err != nil {
				resolveErr = joinErr(resolveErr, fmt.Sprintf("dynamic variable error (%s): %v", v.Name, err))
				continue
			}
			locals[v.Name] = value
			continue
		}
		locals[v.Name] = v.Value
	}

	spec := SubRunSpec{Date: date}
	fields := []struct {
		out      *string
		template string
	}{
		{&spec.Source, job.Source},
		{&spec.Target, job.Target},
		{&spec.SourceFileMask, job.SourceFileMask},
		{&spec.TargetFileMask, job.TargetFileMask},
		{&spec.SourceContainer, job.SourceContainer},
		{&spec.TargetContainer, job.TargetContainer},
	}

	for _, f := range fields {
		resolved, err := Resolve(f.template, globals, locals)
		if err != nil {
			resolveErr = joinErr(resolveErr, err.Error())
			*f.out = f.template
			continue
		}
		*f.out = resolved
	}

	spec.ResolveErr = resolveErr
	return spec
}

func joinErr(acc, msg string) string {
	if acc == "" {
		return msg
	}
	return acc + "; " + msg
}
