package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func errFields(rule Rule) []string {
	var out []string
	for _, e := range rule.Validate() {
		out = append(out, e.Field)
	}
	return out
}

func TestWeeklyValidate(t *testing.T) {
	tests := []struct {
		name       string
		rule       Weekly
		wantFields []string
	}{
		{
			name: "valid",
			rule: Weekly{Weekdays: []string{"Monday", "Friday"}, Time: "09:30", Timezone: "UTC"},
		},
		{
			name:       "no weekdays",
			rule:       Weekly{Time: "09:30", Timezone: "UTC"},
			wantFields: []string{"weekdays"},
		},
		{
			name:       "unknown weekday",
			rule:       Weekly{Weekdays: []string{"Mon"}, Time: "09:30", Timezone: "UTC"},
			wantFields: []string{"weekdays"},
		},
		{
			name:       "bad time",
			rule:       Weekly{Weekdays: []string{"Monday"}, Time: "25:00", Timezone: "UTC"},
			wantFields: []string{"time"},
		},
		{
			name:       "unpadded hour",
			rule:       Weekly{Weekdays: []string{"Monday"}, Time: "9:30", Timezone: "UTC"},
			wantFields: []string{"time"},
		},
		{
			name:       "unpadded minute",
			rule:       Weekly{Weekdays: []string{"Monday"}, Time: "09:5", Timezone: "UTC"},
			wantFields: []string{"time"},
		},
		{
			name:       "unsupported timezone",
			rule:       Weekly{Weekdays: []string{"Monday"}, Time: "09:30", Timezone: "Europe/Paris"},
			wantFields: []string{"timezone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFields, errFields(tt.rule))
		})
	}
}

func TestCustomValidate(t *testing.T) {
	tests := []struct {
		name       string
		rule       Custom
		wantFields []string
	}{
		{
			name: "quarter max x",
			rule: Custom{Kind: BusinessDayQuarter, X: 62, Y: 4, Time: "09:00", Timezone: "UTC"},
		},
		{
			name:       "quarter x too large",
			rule:       Custom{Kind: BusinessDayQuarter, X: 63, Y: 4, Time: "09:00", Timezone: "UTC"},
			wantFields: []string{"x"},
		},
		{
			name:       "quarter y too large",
			rule:       Custom{Kind: BusinessDayQuarter, X: 1, Y: 5, Time: "09:00", Timezone: "UTC"},
			wantFields: []string{"y"},
		},
		{
			name: "month max x",
			rule: Custom{Kind: DayMonth, X: 31, Time: "09:00", Timezone: "UTC"},
		},
		{
			name:       "month x too large",
			rule:       Custom{Kind: DayMonth, X: 32, Time: "09:00", Timezone: "UTC"},
			wantFields: []string{"x"},
		},
		{
			name:       "x below one",
			rule:       Custom{Kind: DayMonth, X: 0, Time: "09:00", Timezone: "UTC"},
			wantFields: []string{"x"},
		},
		{
			name: "half year max x",
			rule: Custom{Kind: BusinessDayHalfYear, X: 125, Y: 2, Time: "09:00", Timezone: "UTC"},
		},
		{
			name: "annual y omitted",
			rule: Custom{Kind: DayAnnually, X: 366, Time: "09:00", Timezone: "UTC"},
		},
		{
			name: "annual y one",
			rule: Custom{Kind: BusinessDayAnnually, X: 255, Y: 1, Time: "09:00", Timezone: "UTC"},
		},
		{
			name:       "annual y two",
			rule:       Custom{Kind: DayAnnually, X: 1, Y: 2, Time: "09:00", Timezone: "UTC"},
			wantFields: []string{"y"},
		},
		{
			name:       "unknown kind",
			rule:       Custom{Kind: Kind("weekly_day"), X: 1, Time: "09:00", Timezone: "UTC"},
			wantFields: []string{"kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFields, errFields(tt.rule))
		})
	}
}

func TestWeeklyMatches(t *testing.T) {
	rule := Weekly{Weekdays: []string{"Monday"}, Time: "09:30", Timezone: "UTC"}

	monday := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	assert.True(t, rule.Matches(monday))
	assert.False(t, rule.Matches(monday.Add(time.Minute)))
	assert.False(t, rule.Matches(monday.AddDate(0, 0, 1)))
}

func TestCustomResolve(t *testing.T) {
	tests := []struct {
		name string
		rule Custom
		ref  time.Time
		want time.Time
	}{
		{
			// March 1st 2026 is a Sunday.
			name: "first business day of month skips weekend",
			rule: Custom{Kind: BusinessDayMonth, X: 1},
			ref:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day 31 clamps to end of february",
			rule: Custom{Kind: DayMonth, X: 31},
			ref:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "third quarter starts in july",
			rule: Custom{Kind: DayQuarter, X: 1, Y: 3},
			ref:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "second half starts in july",
			rule: Custom{Kind: DayHalfYear, X: 1, Y: 2},
			ref:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// January 1st 2026 is a Thursday.
			name: "first business day of year",
			rule: Custom{Kind: BusinessDayAnnually, X: 1},
			ref:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Resolve(tt.ref))
		})
	}
}

func TestCustomMatches(t *testing.T) {
	// First business day of March 2026 is Monday the 2nd.
	rule := Custom{Kind: BusinessDayMonth, X: 1, Time: "08:00", Timezone: "UTC"}

	assert.True(t, rule.Matches(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)))
	assert.False(t, rule.Matches(time.Date(2026, 3, 2, 8, 1, 0, 0, time.UTC)))
	assert.False(t, rule.Matches(time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)))
}
