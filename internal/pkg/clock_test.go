package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	midnight := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// exactly midnight belongs to that day
	assert.Equal(t, midnight, StartOfDay(midnight))

	// a millisecond before midnight belongs to the previous day
	justBefore := midnight.Add(-time.Millisecond)
	assert.Equal(t, midnight.AddDate(0, 0, -1), StartOfDay(justBefore))

	noon := time.Date(2024, 6, 15, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, midnight, StartOfDay(noon))
}

func TestStartOfDayNonUTC(t *testing.T) {
	// 23:30 UTC-5 is 04:30 UTC the next day
	loc := time.FixedZone("UTC-5", -5*3600)
	local := time.Date(2024, 6, 14, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), StartOfDay(local))
}

func TestNextMidnight(t *testing.T) {
	noon := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), NextMidnight(noon))

	midnight := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), NextMidnight(midnight))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-06-15", DayKey(time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)))

	loc := time.FixedZone("UTC+9", 9*3600)
	assert.Equal(t, "2024-06-15", DayKey(time.Date(2024, 6, 16, 8, 0, 0, 0, loc)))
}
