package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTimeRange_RFC3339(t *testing.T) {
	start, end := ExtractTimeRange("Your interview is scheduled for 2026-03-05T14:30:00Z, please be on time")
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, DefaultEventDuration, end.Sub(*start))
}

func TestExtractTimeRange_SlashFormat(t *testing.T) {
	start, end := ExtractTimeRange("We booked you on 3/5/2026 14:30 with the hiring manager")
	require.NotNil(t, start)
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 5, start.Day())
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, DefaultEventDuration, end.Sub(*start))
}

func TestExtractTimeRange_MonthName(t *testing.T) {
	start, _ := ExtractTimeRange("Interview: March 5, 2026 at 2:30 PM")
	require.NotNil(t, start)
	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, 30, start.Minute())
}

func TestExtractTimeRange_YearlessPinsToCurrentYear(t *testing.T) {
	defer func() { now = time.Now }()
	now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local) }

	start, _ := ExtractTimeRange("See you Mar 5 at 2:30 PM")
	require.NotNil(t, start)
	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, time.March, start.Month())
}

func TestExtractTimeRange_YearlessInThePastRollsForward(t *testing.T) {
	defer func() { now = time.Now }()
	now = func() time.Time { return time.Date(2026, 12, 20, 9, 0, 0, 0, time.Local) }

	start, _ := ExtractTimeRange("See you Jan 8 at 3:00 PM")
	require.NotNil(t, start)
	assert.Equal(t, 2027, start.Year(), "a date already behind the email lands in the next year")
	assert.Equal(t, time.January, start.Month())
}

func TestExtractTimeRange_NoDatetime(t *testing.T) {
	start, end := ExtractTimeRange("Looking forward to speaking with you soon!")
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestExtractTimeRange_UnparseableFragmentSkipped(t *testing.T) {
	// Matches the slash pattern but is not a real date.
	start, end := ExtractTimeRange("ref 99/99/2026 99:99")
	assert.Nil(t, start)
	assert.Nil(t, end)
}
