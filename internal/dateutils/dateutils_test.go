package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISODate(t *testing.T) {
	tests := []struct {
		name       string
		dateStr    string
		expectedOk bool
		expectedY  int
		expectedM  time.Month
		expectedD  int
	}{
		{"ISO date", "2024-03-15", true, 2024, time.March, 15},
		{"RFC3339", "2024-03-15T10:30:00Z", true, 2024, time.March, 15},
		{"JS timestamp", "2024-03-15T00:00:00.000Z", true, 2024, time.March, 15},
		{"Full layout", "2024-03-15 08:00:00", true, 2024, time.March, 15},
		{"Month only", "2024-03", true, 2024, time.March, 1},
		{"Padded", "  2024-03-15 ", true, 2024, time.March, 15},
		{"Empty string", "", false, 0, 0, 0},
		{"Invalid month", "2024-13-01", false, 0, 0, 0},
		{"Garbage", "soon", false, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, err := ParseISODate(tc.dateStr)
			if !tc.expectedOk {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedY, date.Year())
			assert.Equal(t, tc.expectedM, date.Month())
			assert.Equal(t, tc.expectedD, date.Day())
			assert.Equal(t, time.UTC, date.Location())
			assert.Zero(t, date.Hour())
		})
	}
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected []YearMonth
		wantErr  bool
	}{
		{
			name:     "single month ignores days",
			start:    "2024-05-31",
			end:      "2024-05-01",
			expected: []YearMonth{{2024, 5}},
		},
		{
			name:     "crosses year boundary",
			start:    "2024-11-15",
			end:      "2025-02-03",
			expected: []YearMonth{{2024, 11}, {2024, 12}, {2025, 1}, {2025, 2}},
		},
		{
			name:     "end before start",
			start:    "2025-02-01",
			end:      "2024-12-01",
			expected: nil,
		},
		{name: "bad start", start: "x", end: "2024-01-01", wantErr: true},
		{name: "bad end", start: "2024-01-01", end: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			months, err := MonthWindow(tc.start, tc.end)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, months)
		})
	}
}

func TestYearMonth(t *testing.T) {
	jan := YearMonth{Year: 2025, Month: 1}
	dec := YearMonth{Year: 2024, Month: 12}

	assert.Equal(t, dec, jan.Prev())
	assert.Equal(t, jan, dec.Next())
	assert.True(t, dec.Before(jan))
	assert.False(t, jan.Before(jan))
	assert.Equal(t, "2025-01", jan.String())
	assert.Equal(t, "2024-12-01", dec.ISODate())
	assert.Equal(t, jan, Of(time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)))
}

func TestCompareDays(t *testing.T) {
	a := time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.January, 1, 1, 0, 0, 0, time.UTC)
	c := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, CompareDays(a, b))
	assert.Equal(t, -1, CompareDays(b, c))
	assert.Equal(t, 1, CompareDays(c, a))
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Day(a))
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "2024-01-01", CleanDateString("  2024-01-01 "))
	assert.Equal(t, "2024 01 01", CleanDateString("2024  01   01"))
	assert.Equal(t, "", CleanDateString("   "))
}
