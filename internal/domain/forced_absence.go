package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkDaysPerMonth approximates the workdays of every month lying fully
// inside a forced absence period.
const WorkDaysPerMonth = 20

// ForcedAbsencePeriod is the input of a lost-wage calculation.
type ForcedAbsencePeriod struct {
	StartDate     time.Time
	ReferenceDate time.Time
	AverageSalary decimal.Decimal
}

// ForcedAbsenceResult holds the lost-wage figures for a forced absence period.
type ForcedAbsenceResult struct {
	Profit           decimal.Decimal `json:"profit"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	TotalDays        int             `json:"total_days"`
	FullMonths       int             `json:"full_months"`
	FirstMonthDays   int             `json:"first_month_days"`
	CurrentMonthDays int             `json:"current_month_days"`
}

// ForcedAbsenceStart returns the first day of forced absence, the day after
// the last working day.
func ForcedAbsenceStart(endWorkDate time.Time) time.Time {
	return endWorkDate.AddDate(0, 0, 1)
}

// DTOs for requests and responses

// ForcedAbsenceRequest accepts either the absence start date or the last
// working day. Dates are YYYY-MM-DD or DD.MM.YYYY.
type ForcedAbsenceRequest struct {
	StartDate     string          `json:"start_date" validate:"required_without=EndWorkDate"`
	EndWorkDate   string          `json:"end_work_date" validate:"required_without=StartDate"`
	ReferenceDate string          `json:"reference_date"`
	AverageSalary decimal.Decimal `json:"average_salary" validate:"gte=0"`
}

type ForcedAbsenceResponse struct {
	CalculationID string              `json:"calculation_id,omitempty"`
	StartDate     string              `json:"start_date"`
	ReferenceDate string              `json:"reference_date"`
	Result        ForcedAbsenceResult `json:"result"`
}
