// Package variable evaluates dynamic variable expressions. The evaluator
// receives the run date explicitly: during a time-travel batch, "today" is
// the iterated date, never the wall clock.
package variable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Evaluator resolves a dynamic variable expression against a run date.
type Evaluator interface {
	Eval(expr string, runDate time.Time) (string, error)
}

// DateEvaluator is the built-in evaluator for date expressions of the form
//
//	today
//	today+3
//	today-1:yyyyMMdd
//	today:dd-MM-yyyy
//
// The format part uses the date tokens users know from masks like
// source_[#TodayAsyyyyMMdd].csv.
type DateEvaluator struct{}

var exprRe = regexp.MustCompile(`^today([+-]\d+)?(?::(.+))?$`)

func (DateEvaluator) Eval(expr string, runDate time.Time) (string, error) {
	m := exprRe.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return "", fmt.Errorf("unsupported expression %q", expr)
	}

	d := runDate
	if m[1] != "" {
		offset, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("bad day offset in %q: %w", expr, err)
		}
		d = d.AddDate(0, 0, offset)
	}

	format := m[2]
	if format == "" {
		format = "yyyy-MM-dd"
	}

	return d.Format(toLayout(format)), nil
}

// Longest tokens first so yyyy is not consumed as two yy.
var layoutReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

func toLayout(format string) string {
	return layoutReplacer.Replace(format)
}
