package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompensationRatioDenominator is the statutory daily penalty fraction
// (1/150 of the key rate per day of delay).
const CompensationRatioDenominator = 150

const (
	CompensationStatusCalculated  = "calculated"
	CompensationStatusUnavailable = "unavailable"
)

// PayoffPeriod is the input of an overdue payment calculation.
// Payday2 == 0 means there is no advance and Payment2 is ignored.
type PayoffPeriod struct {
	PayoffDate    time.Time
	Payday1       int
	Payment1      decimal.Decimal
	Payday2       int
	Payment2      decimal.Decimal
	ReferenceDate time.Time
}

// PayoffResult holds overdue totals and the key-rate penalty.
// KeyRate and Compensation are null when the key rate could not be obtained.
type PayoffResult struct {
	Profit             decimal.Decimal     `json:"profit"`
	Paydays1Count      int                 `json:"paydays_1_count"`
	Paydays2Count      int                 `json:"paydays_2_count"`
	KeyRate            decimal.NullDecimal `json:"key_rate"`
	ElapsedDays        int                 `json:"elapsed_days"`
	Compensation       decimal.NullDecimal `json:"compensation"`
	CompensationStatus string              `json:"compensation_status"`
	KeyRateError       string              `json:"key_rate_error,omitempty"`
}

// CompensationAvailable reports whether the penalty could be calculated.
func (r PayoffResult) CompensationAvailable() bool {
	return r.CompensationStatus == CompensationStatusCalculated
}

type PayoffRequest struct {
	PayoffDate    string          `json:"payoff_date" validate:"required"`
	Payday1       int             `json:"payday_1" validate:"min=1,max=31"`
	Payment1      decimal.Decimal `json:"payment_1" validate:"gte=0"`
	Payday2       int             `json:"payday_2" validate:"min=0,max=31"`
	Payment2      decimal.Decimal `json:"payment_2"`
	ReferenceDate string          `json:"reference_date"`
}

type PayoffResponse struct {
	CalculationID string       `json:"calculation_id,omitempty"`
	PayoffDate    string       `json:"payoff_date"`
	ReferenceDate string       `json:"reference_date"`
	Result        PayoffResult `json:"result"`
}

type KeyRateResponse struct {
	KeyRate decimal.Decimal `json:"key_rate"`
}
