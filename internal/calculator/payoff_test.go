package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/internal/mocks"
)

func TestCountMissedPaydays(t *testing.T) {
	tests := []struct {
		payoffDate    time.Time
		payday        int
		referenceDate time.Time
		expected      int
	}{
		{date(2018, 11, 1), 1, date(2018, 11, 28), 1},
		{date(2018, 11, 1), 1, date(2018, 12, 28), 2},
		{date(2018, 11, 10), 5, date(2018, 11, 28), 0},
		{date(2018, 11, 4), 5, date(2018, 12, 4), 1},
		{date(2018, 10, 4), 5, date(2019, 2, 1), 4},
		{date(2018, 10, 6), 5, date(2018, 11, 6), 1},
		{date(2018, 10, 6), 25, date(2019, 10, 30), 13},
	}

	for _, tt := range tests {
		got := CountMissedPaydays(tt.payoffDate, tt.payday, tt.referenceDate)
		assert.Equal(t, tt.expected, got, "payoff %s payday %d ref %s", tt.payoffDate.Format("2006-01-02"), tt.payday, tt.referenceDate.Format("2006-01-02"))
	}
}

func payoffPeriod() domain.PayoffPeriod {
	return domain.PayoffPeriod{
		PayoffDate:    date(2018, 11, 1),
		Payday1:       1,
		Payment1:      decimal.NewFromInt(1000),
		Payday2:       15,
		Payment2:      decimal.NewFromInt(500),
		ReferenceDate: date(2018, 12, 28),
	}
}

func TestPayoffWithKeyRate(t *testing.T) {
	got := PayoffWithKeyRate(payoffPeriod(), decimal.NewNullDecimal(decimal.RequireFromString("7.5")), nil)

	assert.Equal(t, 2, got.Paydays1Count)
	assert.Equal(t, 2, got.Paydays2Count)
	assert.Equal(t, 57, got.ElapsedDays)
	assert.True(t, got.Profit.Equal(decimal.NewFromInt(3000)), "profit %s", got.Profit)
	require.True(t, got.Compensation.Valid)
	// 3000 * 7.5% / 150 * 57
	assert.Equal(t, "85.50", got.Compensation.Decimal.StringFixed(2))
	assert.Equal(t, domain.CompensationStatusCalculated, got.CompensationStatus)
	assert.True(t, got.CompensationAvailable())
	assert.Empty(t, got.KeyRateError)
}

func TestPayoffWithKeyRate_NoAdvanceIgnoresSecondPayment(t *testing.T) {
	period := payoffPeriod()
	period.Payday2 = 0
	period.Payment2 = decimal.RequireFromString("999999.99")

	got := PayoffWithKeyRate(period, decimal.NewNullDecimal(decimal.RequireFromString("7.5")), nil)

	assert.Equal(t, 2, got.Paydays1Count)
	assert.Zero(t, got.Paydays2Count)
	assert.True(t, got.Profit.Equal(decimal.NewFromInt(2000)), "profit %s", got.Profit)
	assert.Equal(t, "57.00", got.Compensation.Decimal.StringFixed(2))
}

func TestPayoffWithKeyRate_Rounding(t *testing.T) {
	period := domain.PayoffPeriod{
		PayoffDate:    date(2022, 3, 1),
		Payday1:       5,
		Payment1:      decimal.RequireFromString("333.335"),
		ReferenceDate: date(2022, 3, 11),
	}

	got := PayoffWithKeyRate(period, decimal.NewNullDecimal(decimal.RequireFromString("7.3")), nil)

	// profit is reported with full precision
	assert.Equal(t, "333.335", got.Profit.String())
	assert.Equal(t, 10, got.ElapsedDays)
	// 333.335 * 7.3 * 10 / 15000 = 1.62223...
	assert.Equal(t, "1.62", got.Compensation.Decimal.String())
}

func TestPayoffWithKeyRate_Unavailable(t *testing.T) {
	got := PayoffWithKeyRate(payoffPeriod(), decimal.NullDecimal{}, errors.New("upstream timeout"))

	assert.True(t, got.Profit.Equal(decimal.NewFromInt(3000)))
	assert.False(t, got.KeyRate.Valid)
	assert.False(t, got.Compensation.Valid)
	assert.Equal(t, domain.CompensationStatusUnavailable, got.CompensationStatus)
	assert.False(t, got.CompensationAvailable())
	assert.Equal(t, "upstream timeout", got.KeyRateError)
}

func TestPayoff_UsesProvider(t *testing.T) {
	provider := &mocks.MockKeyRateProvider{}
	provider.On("KeyRate", mock.Anything).Return(decimal.RequireFromString("7.5"), nil).Once()

	got := Payoff(context.Background(), payoffPeriod(), provider)

	require.True(t, got.KeyRate.Valid)
	assert.Equal(t, "7.5", got.KeyRate.Decimal.String())
	assert.Equal(t, "85.50", got.Compensation.Decimal.StringFixed(2))
	provider.AssertExpectations(t)
}

func TestPayoff_ProviderFailure(t *testing.T) {
	rates := keyrate.ProviderFunc(func(ctx context.Context) (decimal.Decimal, error) {
		return decimal.Zero, context.DeadlineExceeded
	})

	got := Payoff(context.Background(), payoffPeriod(), rates)

	assert.False(t, got.Compensation.Valid)
	assert.Equal(t, domain.CompensationStatusUnavailable, got.CompensationStatus)
	assert.Contains(t, got.KeyRateError, "deadline exceeded")
}

func TestPayoff_Idempotent(t *testing.T) {
	rates := keyrate.Static{Rate: decimal.RequireFromString("16")}
	first := Payoff(context.Background(), payoffPeriod(), rates)
	second := Payoff(context.Background(), payoffPeriod(), rates)

	assert.Equal(t, first, second)
}
