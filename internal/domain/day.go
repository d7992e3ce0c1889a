package domain

import "time"

// Day is a local calendar day in "2006-01-02" form. Every component
// that reasons about "today" (eligibility, streaks, daily stats) uses
// the same DayOf conversion so the day boundary cannot drift between
// them.
type Day string

const dayLayout = "2006-01-02"

// DayOf converts an instant to the calendar day observed at the given
// UTC offset in minutes. The offset is supplied by the caller (the
// dashboard sends the client's timezone offset at login).
func DayOf(t time.Time, offsetMinutes int) Day {
	return Day(t.UTC().Add(time.Duration(offsetMinutes) * time.Minute).Format(dayLayout))
}

// ParseDay parses a "2006-01-02" string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", err
	}
	return Day(t.Format(dayLayout)), nil
}

// Time returns midnight UTC of the day. Useful for range queries.
func (d Day) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(dayLayout))
}

// Next returns the following day.
func (d Day) Next() Day { return d.AddDays(1) }

// Prev returns the preceding day.
func (d Day) Prev() Day { return d.AddDays(-1) }

// Before reports whether d is strictly earlier than other. The string
// layout sorts chronologically, so plain comparison suffices.
func (d Day) Before(other Day) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool { return d > other }

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool { return d == "" }
