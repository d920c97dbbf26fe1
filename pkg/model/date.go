package model

import (
	"math"
	"time"
)

// DateOf truncates t to its calendar day in t's own location and returns
// that day at UTC midnight. Stored check-in/check-out dates use this form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the calendar-day difference end-start, rounded up.
func DaysBetween(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// NightsBetween is DaysBetween with a floor of one night.
func NightsBetween(checkIn, checkOut time.Time) int {
	return max(DaysBetween(checkIn, checkOut), 1)
}
