package pkg

import (
	"time"
)

// StartOfDay returns midnight UTC of the calendar day containing t. An event
// stamped exactly at 00:00:00.000 belongs to that day; 23:59:59.999 of the
// previous day does not.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextMidnight returns midnight UTC of the day after t. Daily counters
// expire at this instant.
func NextMidnight(t time.Time) time.Time {
	return StartOfDay(t).Add(24 * time.Hour)
}

// DayKey formats t as a UTC calendar day, the key daily claims and counters
// are bucketed by.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
