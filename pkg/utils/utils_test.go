package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{name: "same day", start: date(2018, 11, 28), end: date(2018, 11, 28), expected: 0},
		{name: "same month", start: date(2018, 12, 1), end: date(2018, 12, 31), expected: 0},
		{name: "one month", start: date(2018, 10, 28), end: date(2018, 11, 28), expected: 1},
		{name: "month boundary after one day", start: date(2018, 10, 31), end: date(2018, 11, 1), expected: 1},
		{name: "one year", start: date(2017, 11, 28), end: date(2018, 11, 28), expected: 12},
		{name: "year boundary after one day", start: date(2017, 12, 31), end: date(2018, 1, 1), expected: 1},
		{name: "end before start", start: date(2018, 11, 28), end: date(2018, 10, 1), expected: 0},
		{name: "multi-year", start: date(2019, 5, 15), end: date(2022, 2, 1), expected: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MonthsBetween(tt.start, tt.end))
		})
	}
}

func TestMonthsBetween_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2018, 11, 28, 18, 0, 0, 0, time.UTC)
	end := time.Date(2018, 11, 28, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, MonthsBetween(start, end))
	assert.Equal(t, 0, MonthsBetween(end, start))
}

// Weekdays are Monday = 0 .. Sunday = 6.
func TestCountWorkdays(t *testing.T) {
	tests := []struct {
		startDay     int
		startWeekday int
		endDay       int
		expected     int
	}{
		{1, 0, 28, 20},
		{1, 0, 31, 23},
		{1, 0, 30, 22},
		{1, 5, 30, 20},
		{1, 5, 31, 21},
		{1, 6, 31, 22},
		{1, 6, 30, 21},
		{1, 5, 2, 0},
		{20, 2, 26, 5},
		{20, 2, 27, 6},
		{10, 3, 9, 0},
		{15, 0, 15, 1},
		{15, 6, 15, 0},
	}

	for _, tt := range tests {
		got := CountWorkdays(tt.startDay, tt.startWeekday, tt.endDay)
		assert.Equal(t, tt.expected, got, "CountWorkdays(%d, %d, %d)", tt.startDay, tt.startWeekday, tt.endDay)
	}
}

func TestCountWorkdays_EmptyRange(t *testing.T) {
	for day := 1; day <= 31; day++ {
		for wd := 0; wd < 7; wd++ {
			assert.Zero(t, CountWorkdays(day, wd, day-1))
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, DaysInMonth(2022, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 31, DaysInMonth(2021, time.December))
	assert.Equal(t, 30, DaysInMonth(2021, time.November))
}

func TestMondayWeekday(t *testing.T) {
	assert.Equal(t, 0, MondayWeekday(date(2022, 2, 7))) // Monday
	assert.Equal(t, 1, MondayWeekday(date(2022, 2, 1))) // Tuesday
	assert.Equal(t, 4, MondayWeekday(date(2022, 2, 4))) // Friday
	assert.Equal(t, 6, MondayWeekday(date(2022, 2, 6))) // Sunday
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2022, 3, 4), date(2022, 3, 4)))
	assert.Equal(t, 28, DaysBetween(date(2022, 2, 4), date(2022, 3, 4)))
	assert.Equal(t, 365, DaysBetween(date(2021, 1, 1), date(2022, 1, 1)))
	assert.Equal(t, -3, DaysBetween(date(2022, 3, 4), date(2022, 3, 1)))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{name: "iso", input: "2022-02-04", expected: date(2022, 2, 4)},
		{name: "display", input: "04.02.2022", expected: date(2022, 2, 4)},
		{name: "surrounding spaces", input: " 04.02.2022 ", expected: date(2022, 2, 4)},
		{name: "garbage", input: "4 Feb", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestFormatDateAndMoney(t *testing.T) {
	assert.Equal(t, "04.03.2022", FormatDate(date(2022, 3, 4)))
	assert.Equal(t, "21.00", FormatMoney(decimal.NewFromInt(21)))
	assert.Equal(t, "0.50", FormatMoney(decimal.RequireFromString("0.5")))
}
