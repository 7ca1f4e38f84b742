// Package recurrence models schedule rules: either a weekday set or one of
// eight ordinal "x-th (business) day of period y" rules, with validation and
// occurrence resolution. Rules are pure values, safe for concurrent use.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chronocopy/internal/validate"
)

// Kind identifies one of the eight ordinal rule types.
type Kind string

const (
	BusinessDayMonth    Kind = "business_day_month"
	DayMonth            Kind = "day_month"
	BusinessDayQuarter  Kind = "business_day_quarter"
	DayQuarter          Kind = "day_quarter"
	BusinessDayHalfYear Kind = "business_day_halfyear"
	DayHalfYear         Kind = "day_halfyear"
	BusinessDayAnnually Kind = "business_day_annually"
	DayAnnually         Kind = "day_annually"
)

// MaxX is the largest ordinal position possible in any period of this kind.
func (k Kind) MaxX() int {
	switch k {
	case BusinessDayMonth:
		return 23
	case DayMonth:
		return 31
	case BusinessDayQuarter:
		return 62
	case DayQuarter:
		return 92
	case BusinessDayHalfYear:
		return 125
	case DayHalfYear:
		return 184
	case BusinessDayAnnually:
		return 255
	case DayAnnually:
		return 366
	default:
		return 0
	}
}

// Business reports whether the kind counts business days only.
func (k Kind) Business() bool {
	return strings.HasPrefix(string(k), "business_")
}

// Period returns the span the kind counts within.
func (k Kind) Period() Period {
	switch k {
	case BusinessDayMonth, DayMonth:
		return PeriodMonth
	case BusinessDayQuarter, DayQuarter:
		return PeriodQuarter
	case BusinessDayHalfYear, DayHalfYear:
		return PeriodHalfYear
	default:
		return PeriodYear
	}
}

// yBounds returns the valid period-index range for the kind; ok is false
// when the kind takes no y.
func (k Kind) yBounds() (min, max int, ok bool) {
	switch k.Period() {
	case PeriodQuarter:
		return 1, 4, true
	case PeriodHalfYear:
		return 1, 2, true
	case PeriodYear:
		// Annual rules carry a fixed y=1 for display symmetry only.
		return 1, 1, true
	default:
		return 0, 0, false
	}
}

// Weekdays in schedule rules are full English day names.
var weekdayNames = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

// Timezones is the supported zone list offered by the product.
var Timezones = []string{
	"UTC",
	"Asia/Kolkata",
	"America/New_York",
	"Europe/London",
	"Asia/Singapore",
	"Australia/Sydney",
}

func timezoneSupported(tz string) bool {
	for _, z := range Timezones {
		if z == tz {
			return true
		}
	}
	return false
}

// Rule is the recurrence sum type: exactly one of Weekly or Custom.
type Rule interface {
	Validate() validate.Errors
	// Matches reports whether the rule fires at the given local wall time,
	// to minute precision. now must already be in the rule's timezone.
	Matches(now time.Time) bool
	Location() (*time.Location, error)

	isRule()
}

// Weekly fires on a set of weekdays at a local time of day.
type Weekly struct {
	Weekdays []string `json:"weekdays"`
	Time     string   `json:"time"` // HH:MM
	Timezone string   `json:"timezone"`
}

func (Weekly) isRule() {}

func (w Weekly) Validate() validate.Errors {
	var errs validate.Errors

	if len(w.Weekdays) == 0 {
		errs.Add("weekdays", "select at least one weekday")
	}
	for _, d := range w.Weekdays {
		if _, ok := weekdayNames[d]; !ok {
			errs.Add("weekdays", "unknown weekday: "+d)
			break
		}
	}

	validateClock(&errs, w.Time, w.Timezone)
	return errs
}

func (w Weekly) Matches(now time.Time) bool {
	day := now.Weekday()
	for _, d := range w.Weekdays {
		if weekdayNames[d] == day && now.Format("15:04") == w.Time {
			return true
		}
	}
	return false
}

func (w Weekly) Location() (*time.Location, error) {
	return time.LoadLocation(w.Timezone)
}

// Custom fires on the x-th (business) day of a period, where Y selects the
// quarter or half within the year when the kind calls for one.
type Custom struct {
	Kind     Kind   `json:"kind"`
	X        int    `json:"x"`
	Y        int    `json:"y,omitempty"`
	Time     string `json:"time"` // HH:MM
	Timezone string `json:"timezone"`
}

func (Custom) isRule() {}

func (c Custom) Validate() validate.Errors {
	var errs validate.Errors

	maxX := c.Kind.MaxX()
	if maxX == 0 {
		errs.Add("kind", "unknown recurrence kind: "+string(c.Kind))
		return errs
	}

	if c.X < 1 || c.X > maxX {
		errs.Add("x", fmt.Sprintf("x must be between 1 and %d for %s", maxX, c.Kind))
	}

	if min, max, ok := c.Kind.yBounds(); ok {
		y := c.Y
		if c.Kind.Period() == PeriodYear && y == 0 {
			y = 1 // annual y is fixed, not user-chosen
		}
		if y < min || y > max {
			if min == max {
				errs.Add("y", fmt.Sprintf("y must be %d for %s", min, c.Kind))
			} else {
				errs.Add("y", fmt.Sprintf("y must be between %d and %d for %s", min, max, c.Kind))
			}
		}
	}

	validateClock(&errs, c.Time, c.Timezone)
	return errs
}

// Resolve computes the concrete date the rule selects within the period of
// the year containing ref. When x exceeds the qualifying days actually in
// the period, the rule degrades to the period's last qualifying day.
func (c Custom) Resolve(ref time.Time) time.Time {
	index := c.Y
	if index == 0 {
		index = 1
	}

	start, end := PeriodBounds(c.Kind.Period(), index, ref)
	return NthDay(start, end, c.X, c.Kind.Business())
}

func (c Custom) Matches(now time.Time) bool {
	if now.Format("15:04") != c.Time {
		return false
	}
	target := c.Resolve(now)
	y1, m1, d1 := now.Date()
	y2, m2, d2 := target.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (c Custom) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func validateClock(errs *validate.Errors, clock, tz string) {
	if !validClock(clock) {
		errs.Add("time", "time must be HH:MM")
	}
	if !timezoneSupported(tz) {
		errs.Add("timezone", "unsupported timezone: "+tz)
	} else if _, err := time.LoadLocation(tz); err != nil {
		errs.Add("timezone", "unknown timezone: "+tz)
	}
}

// validClock accepts zero-padded HH:MM only. Matching compares against
// now.Format("15:04"), so an unpadded hour would validate yet never fire.
func validClock(clock string) bool {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return false
	}
	return true
}
