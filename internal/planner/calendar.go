package planner

import "time"

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMonthStart returns the first day of the month after t. December rolls
// over into January of the following year.
func NextMonthStart(t time.Time) time.Time {
	if t.Month() == time.December {
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// DatesUntil lists every local midnight from today (inclusive) up to end
// (exclusive).
func DatesUntil(today, end time.Time) []time.Time {
	dates := make([]time.Time, 0, 31)
	for current := Midnight(today); current.Before(end); current = current.AddDate(0, 0, 1) {
		dates = append(dates, current)
	}
	return dates
}

// RangeEnd is the exclusive end of the planning range that starts on today.
// On the first day of a month the range is empty: the boundary is today
// itself, so a run on the 1st plans nothing.
func RangeEnd(today time.Time) time.Time {
	if today.Day() == 1 {
		return Midnight(today)
	}
	return NextMonthStart(today)
}
