package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/pkg/utils"
)

// ForcedAbsence calculates lost wages between StartDate and ReferenceDate.
//
// The first and the last month of the period get exact weekday counts, every
// month in between is counted as domain.WorkDaysPerMonth workdays. A reference
// date before the start date yields zero days.
func ForcedAbsence(p domain.ForcedAbsencePeriod) domain.ForcedAbsenceResult {
	dailyRate := p.AverageSalary.Div(decimal.NewFromInt(domain.WorkDaysPerMonth))
	monthsDiff := utils.MonthsBetween(p.StartDate, p.ReferenceDate)

	var result domain.ForcedAbsenceResult
	switch {
	case utils.DaysBetween(p.StartDate, p.ReferenceDate) < 0:
		// inverted period, everything stays zero
	case monthsDiff > 0:
		daysInStartMonth := utils.DaysInMonth(p.StartDate.Year(), p.StartDate.Month())
		result.FirstMonthDays = utils.CountWorkdays(p.StartDate.Day(), utils.MondayWeekday(p.StartDate), daysInStartMonth)

		firstOfReferenceMonth := utils.FirstOfMonth(p.ReferenceDate)
		result.CurrentMonthDays = utils.CountWorkdays(1, utils.MondayWeekday(firstOfReferenceMonth), p.ReferenceDate.Day())

		result.FullMonths = monthsDiff - 1
		result.TotalDays = result.FullMonths*domain.WorkDaysPerMonth + result.FirstMonthDays + result.CurrentMonthDays
	default:
		result.CurrentMonthDays = utils.CountWorkdays(p.StartDate.Day(), utils.MondayWeekday(p.StartDate), p.ReferenceDate.Day())
		result.TotalDays = result.CurrentMonthDays
	}

	result.DailyRate = dailyRate
	result.Profit = dailyRate.Mul(decimal.NewFromInt(int64(result.TotalDays))).Round(2)
	return result
}
