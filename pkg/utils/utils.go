package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accepted input date layouts. ISO first, then the dd.mm.yyyy form used in claim documents.
const (
	DateLayoutISO     = "2006-01-02"
	DateLayoutDisplay = "02.01.2006"
)

// MonthsBetween returns the number of calendar months separating two dates.
// Only the year and month fields are subtracted, so Oct 31 -> Nov 1 is one month.
// Returns 0 when end is not after start.
func MonthsBetween(start, end time.Time) int {
	if !civilDate(end).After(civilDate(start)) {
		return 0
	}

	yearDiff := end.Year() - start.Year()
	var monthDiff int
	if end.Month() < start.Month() {
		yearDiff--
		monthDiff = int(end.Month()) + 12 - int(start.Month())
	} else {
		monthDiff = int(end.Month()) - int(start.Month())
	}

	return yearDiff*12 + monthDiff
}

// CountWorkdays counts Monday-Friday days in the closed range [startDay, endDay].
// startWeekday is the weekday of startDay with Monday as 0 and Sunday as 6.
func CountWorkdays(startDay, startWeekday, endDay int) int {
	workdays := 0
	weekday := ((startWeekday % 7) + 7) % 7
	for day := startDay; day <= endDay; day++ {
		if weekday < 5 {
			workdays++
		}
		weekday = (weekday + 1) % 7
	}
	return workdays
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MondayWeekday converts time.Weekday (Sunday = 0) to a Monday = 0 index.
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// FirstOfMonth returns day 1 of the month t falls in.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from one civil date to another.
// The result is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}

// ParseDate parses a date in either ISO or dd.mm.yyyy form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayoutISO, DateLayoutDisplay} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q, expected YYYY-MM-DD or DD.MM.YYYY", s)
}

// FormatDate renders a date as dd.mm.yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayoutDisplay)
}

// DateOf drops the time of day, keeping t's civil date.
func DateOf(t time.Time) time.Time {
	return civilDate(t)
}

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
