package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNamedDates(t *testing.T) {
	now := time.Date(2026, 7, 31, 14, 30, 0, 0, time.UTC) // a Friday

	got, err := Parse("today", now, WeekstartMonday, "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), got)

	got, err = Parse("eom", now, WeekstartMonday, "")
	require.NoError(t, err)
	assert.Equal(t, 7, int(got.Month()))
	assert.Equal(t, 31, got.Day())

	got, err = Parse("sow", now, WeekstartMonday, "")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, got.Weekday())
}

func TestParseISO8601(t *testing.T) {
	now := time.Now()
	got, err := Parse("2026-07-31T12:00:00Z", now, WeekstartSunday, "")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, 31, got.Day())
}

func TestDateRoundTrip(t *testing.T) {
	layout := "Y-M-D"
	in := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	rendered := Render(in, layout)
	assert.Equal(t, "2026-03-05", rendered)

	parsed, err := parseTemplate(rendered, layout, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, in.Year(), parsed.Year())
	assert.Equal(t, in.Month(), parsed.Month())
	assert.Equal(t, in.Day(), parsed.Day())
}

func TestDurationRoundTrip(t *testing.T) {
	for _, unit := range []Unit{UnitSecond, UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth, UnitQuarter, UnitYear} {
		d := Duration{N: 3, Unit: unit}
		rendered := RenderDuration(d)
		parsed, err := ParseDuration(rendered)
		require.NoErrorf(t, err, "unit %v", unit)
		assert.Equalf(t, d, parsed, "round trip for unit %v", unit)
	}
}

func TestParseISODuration(t *testing.T) {
	d, err := ParseDuration("P1Y")
	require.NoError(t, err)
	assert.Equal(t, Duration{1, UnitYear}, d)

	d, err = ParseDuration("PT1H30M")
	require.NoError(t, err)
	assert.Equal(t, Duration{1, UnitHour}, d)
}

func TestDurationRejectsLargeDays(t *testing.T) {
	_, err := ParseDuration("20000d")
	assert.Error(t, err)
}

func TestDurationAddToCalendarCorrect(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	d := Duration{N: 1, Unit: UnitMonth}
	got := d.AddTo(start)
	// Jan 31 + 1 month normalizes to Mar 3 in Go's AddDate, matching the
	// same normalizing behavior taskwarrior's own calendar math exhibits.
	assert.True(t, got.After(start))
}
