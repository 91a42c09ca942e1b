package calculator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/pkg/utils"
)

// CountMissedPaydays counts how many times day-of-month payday passed
// between payoffDate and referenceDate. Every month strictly between the two
// contributes exactly one missed payment.
func CountMissedPaydays(payoffDate time.Time, payday int, referenceDate time.Time) int {
	monthsDiff := utils.MonthsBetween(payoffDate, referenceDate)

	firstMonthHit := 0
	if payoffDate.Day() <= payday {
		firstMonthHit = 1
	}
	if monthsDiff == 0 {
		return firstMonthHit
	}

	lastMonthHit := 0
	if referenceDate.Day() >= payday {
		lastMonthHit = 1
	}
	if monthsDiff == 1 {
		return firstMonthHit + lastMonthHit
	}

	return firstMonthHit + (monthsDiff - 1) + lastMonthHit
}

// Payoff asks rates for the current key rate and calculates the overdue
// payment totals. A provider failure results in an unavailable compensation.
func Payoff(ctx context.Context, p domain.PayoffPeriod, rates keyrate.Provider) domain.PayoffResult {
	rate, err := rates.KeyRate(ctx)
	if err != nil {
		return PayoffWithKeyRate(p, decimal.NullDecimal{}, err)
	}
	return PayoffWithKeyRate(p, decimal.NewNullDecimal(rate), nil)
}

// PayoffWithKeyRate calculates the overdue payment totals with an already
// known key rate. rateErr explains why rate is null, if it is.
func PayoffWithKeyRate(p domain.PayoffPeriod, rate decimal.NullDecimal, rateErr error) domain.PayoffResult {
	result := domain.PayoffResult{
		Paydays1Count: CountMissedPaydays(p.PayoffDate, p.Payday1, p.ReferenceDate),
		ElapsedDays:   utils.DaysBetween(p.PayoffDate, p.ReferenceDate),
		KeyRate:       rate,
	}

	payment2 := decimal.Zero
	if p.Payday2 != 0 {
		result.Paydays2Count = CountMissedPaydays(p.PayoffDate, p.Payday2, p.ReferenceDate)
		payment2 = p.Payment2
	}

	// profit keeps full precision, only the compensation is rounded
	result.Profit = p.Payment1.Mul(decimal.NewFromInt(int64(result.Paydays1Count))).
		Add(payment2.Mul(decimal.NewFromInt(int64(result.Paydays2Count))))

	if !rate.Valid {
		result.CompensationStatus = domain.CompensationStatusUnavailable
		if rateErr != nil {
			result.KeyRateError = rateErr.Error()
		}
		return result
	}

	// profit * rate/100 * 1/150 * days
	compensation := result.Profit.
		Mul(rate.Decimal).
		Mul(decimal.NewFromInt(int64(result.ElapsedDays))).
		Div(decimal.NewFromInt(100 * domain.CompensationRatioDenominator)).
		Round(2)

	result.Compensation = decimal.NewNullDecimal(compensation)
	result.CompensationStatus = domain.CompensationStatusCalculated
	return result
}
