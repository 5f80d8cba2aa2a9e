package entities

import (
	"fmt"
	"time"
)

// DateLayout is the textual form of a simulated day
const DateLayout = "2006-01-02"

// Day normalizes t to midnight UTC of its calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar day n days after t
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// ParseDate parses a YYYY-MM-DD day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError("date", "invalid date %q, expected %s", s, DateLayout)
	}
	return t, nil
}

// FormatDate renders a simulated day
func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// DateRange is an inclusive range of simulated days. Zero bounds are open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	if !r.Start.IsZero() && d.Before(Day(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(Day(r.End)) {
		return false
	}
	return true
}

// Validate rejects ranges whose start follows their end
func (r DateRange) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return NewValidationError("range", "start date %s cannot be after end date %s", FormatDate(r.Start), FormatDate(r.End))
	}
	return nil
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", FormatDate(r.Start), FormatDate(r.End))
}
