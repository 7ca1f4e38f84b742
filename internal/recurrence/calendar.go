package recurrence

import "time"

// Period is the span an ordinal rule counts days within.
type Period int

const (
	PeriodMonth Period = iota
	PeriodQuarter
	PeriodHalfYear
	PeriodYear
)

// IsBusinessDay reports whether t falls on Monday through Friday. No holiday
// calendar is applied.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PeriodBounds returns the first and last day of the given period in the
// year containing ref. For quarters and half-years, index selects which one
// (1-based); it is ignored for months and years.
func PeriodBounds(p Period, index int, ref time.Time) (time.Time, time.Time) {
	year := ref.Year()
	loc := ref.Location()

	var start time.Time
	var months int

	switch p {
	case PeriodMonth:
		start = time.Date(year, ref.Month(), 1, 0, 0, 0, 0, loc)
		months = 1
	case PeriodQuarter:
		start = time.Date(year, time.Month(3*(index-1)+1), 1, 0, 0, 0, 0, loc)
		months = 3
	case PeriodHalfYear:
		start = time.Date(year, time.Month(6*(index-1)+1), 1, 0, 0, 0, 0, loc)
		months = 6
	default:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		months = 12
	}

	end := start.AddDate(0, months, -1)
	return start, end
}

// NthDay returns the n-th qualifying day between start and end inclusive,
// counting every day or business days only. When the period holds fewer than
// n qualifying days the last qualifying day is returned instead; the bounds
// check at authoring time already rejected values impossible in any period.
func NthDay(start, end time.Time, n int, businessOnly bool) time.Time {
	var last time.Time
	count := 0

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if businessOnly && !IsBusinessDay(d) {
			continue
		}
		count++
		last = d
		if count == n {
			return d
		}
	}

	return last
}
