package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/claim-calculator/internal/config"
	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/internal/mocks"
	customError "github.com/segyhp/claim-calculator/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		KeyRate:   config.KeyRateConfig{Timeout: "2s", CacheTTL: "1h"},
		Scheduler: config.SchedulerConfig{Timezone: "UTC"},
	}
}

func newTestService(repo *mocks.MockCalculationRepository, rates keyrate.Provider) *CalculatorService {
	svc := NewCalculatorService(nil, rates, testConfig(), nil)
	if repo != nil {
		svc.CalcRepo = repo
	}
	svc.now = func() time.Time { return time.Date(2022, 3, 4, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestCalculateForcedAbsence(t *testing.T) {
	tests := []struct {
		name           string
		request        *domain.ForcedAbsenceRequest
		setupMocks     func(*mocks.MockCalculationRepository)
		expectedError  bool
		errorCode      string
		validateResult func(*testing.T, *domain.ForcedAbsenceResponse)
	}{
		{
			name: "Success - start date and reference date",
			request: &domain.ForcedAbsenceRequest{
				StartDate:     "2022-02-04",
				ReferenceDate: "04.03.2022",
				AverageSalary: decimal.NewFromInt(20),
			},
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(calc *domain.Calculation) bool {
					return calc.Kind == domain.CalculationKindForcedAbsence && calc.ID != uuid.Nil
				})).Return(nil)
			},
			validateResult: func(t *testing.T, resp *domain.ForcedAbsenceResponse) {
				assert.Equal(t, "04.02.2022", resp.StartDate)
				assert.Equal(t, "04.03.2022", resp.ReferenceDate)
				assert.Equal(t, 21, resp.Result.TotalDays)
				assert.True(t, resp.Result.Profit.Equal(decimal.NewFromInt(21)))
				_, err := uuid.Parse(resp.CalculationID)
				assert.NoError(t, err)
			},
		},
		{
			name: "Success - last working day and default reference date",
			request: &domain.ForcedAbsenceRequest{
				EndWorkDate:   "2022-02-03",
				AverageSalary: decimal.NewFromInt(20),
			},
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			validateResult: func(t *testing.T, resp *domain.ForcedAbsenceResponse) {
				assert.Equal(t, "04.02.2022", resp.StartDate)
				assert.Equal(t, "04.03.2022", resp.ReferenceDate)
				assert.Equal(t, 17, resp.Result.FirstMonthDays)
				assert.Equal(t, 4, resp.Result.CurrentMonthDays)
			},
		},
		{
			name: "Success - recording failure keeps the result",
			request: &domain.ForcedAbsenceRequest{
				StartDate:     "2022-02-01",
				ReferenceDate: "2022-02-28",
				AverageSalary: decimal.NewFromInt(20),
			},
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("database connection error"))
			},
			validateResult: func(t *testing.T, resp *domain.ForcedAbsenceResponse) {
				assert.Equal(t, 20, resp.Result.TotalDays)
				assert.Empty(t, resp.CalculationID)
			},
		},
		{
			name: "Failure - invalid start date",
			request: &domain.ForcedAbsenceRequest{
				StartDate:     "2022/02/04",
				AverageSalary: decimal.NewFromInt(20),
			},
			setupMocks:    func(repo *mocks.MockCalculationRepository) {},
			expectedError: true,
			errorCode:     customError.ErrCodeInvalidDate,
		},
		{
			name: "Failure - invalid reference date",
			request: &domain.ForcedAbsenceRequest{
				StartDate:     "2022-02-04",
				ReferenceDate: "yesterday",
				AverageSalary: decimal.NewFromInt(20),
			},
			setupMocks:    func(repo *mocks.MockCalculationRepository) {},
			expectedError: true,
			errorCode:     customError.ErrCodeInvalidDate,
		},
		{
			name: "Failure - negative salary",
			request: &domain.ForcedAbsenceRequest{
				StartDate:     "2022-02-04",
				AverageSalary: decimal.NewFromInt(-1),
			},
			setupMocks:    func(repo *mocks.MockCalculationRepository) {},
			expectedError: true,
			errorCode:     customError.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockCalculationRepository{}
			tt.setupMocks(repo)
			svc := newTestService(repo, keyrate.Static{})

			resp, err := svc.CalculateForcedAbsence(context.Background(), tt.request)

			if tt.expectedError {
				require.Error(t, err)
				assert.Nil(t, resp)
				assert.Equal(t, tt.errorCode, customError.CodeOf(err))
			} else {
				require.NoError(t, err)
				tt.validateResult(t, resp)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCalculatePayoff(t *testing.T) {
	request := &domain.PayoffRequest{
		PayoffDate:    "2018-11-01",
		Payday1:       1,
		Payment1:      decimal.NewFromInt(1000),
		Payday2:       15,
		Payment2:      decimal.NewFromInt(500),
		ReferenceDate: "2018-12-28",
	}

	t.Run("Success - compensation calculated and recorded", func(t *testing.T) {
		repo := &mocks.MockCalculationRepository{}
		rates := &mocks.MockKeyRateProvider{}
		rates.On("KeyRate", mock.Anything).Return(decimal.RequireFromString("7.5"), nil)

		var stored *domain.Calculation
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.Calculation)
		}).Return(nil)

		resp, err := newTestService(repo, rates).CalculatePayoff(context.Background(), request)

		require.NoError(t, err)
		assert.Equal(t, "01.11.2018", resp.PayoffDate)
		assert.Equal(t, 2, resp.Result.Paydays1Count)
		assert.Equal(t, 2, resp.Result.Paydays2Count)
		assert.Equal(t, "85.50", resp.Result.Compensation.Decimal.StringFixed(2))

		require.NotNil(t, stored)
		assert.Equal(t, domain.CalculationKindPayoff, stored.Kind)
		assert.Equal(t, resp.CalculationID, stored.ID.String())

		var storedResult map[string]interface{}
		require.NoError(t, json.Unmarshal(stored.Result, &storedResult))
		assert.Equal(t, domain.CompensationStatusCalculated, storedResult["compensation_status"])

		rates.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Success - key rate unavailable", func(t *testing.T) {
		rates := keyrate.ProviderFunc(func(context.Context) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("cbr is down")
		})

		resp, err := newTestService(nil, rates).CalculatePayoff(context.Background(), request)

		require.NoError(t, err)
		assert.True(t, resp.Result.Profit.Equal(decimal.NewFromInt(3000)))
		assert.False(t, resp.Result.Compensation.Valid)
		assert.Equal(t, domain.CompensationStatusUnavailable, resp.Result.CompensationStatus)
		assert.Empty(t, resp.CalculationID)
	})

	t.Run("Success - slow key rate is cut by timeout", func(t *testing.T) {
		rates := keyrate.ProviderFunc(func(ctx context.Context) (decimal.Decimal, error) {
			<-ctx.Done()
			return decimal.Zero, ctx.Err()
		})
		svc := newTestService(nil, rates)
		svc.config.KeyRate.Timeout = "20ms"

		resp, err := svc.CalculatePayoff(context.Background(), request)

		require.NoError(t, err)
		assert.Equal(t, domain.CompensationStatusUnavailable, resp.Result.CompensationStatus)
		assert.Contains(t, resp.Result.KeyRateError, "deadline exceeded")
	})

	t.Run("Failure - payday out of range", func(t *testing.T) {
		bad := *request
		bad.Payday1 = 0

		resp, err := newTestService(nil, keyrate.Static{}).CalculatePayoff(context.Background(), &bad)

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, customError.ErrCodeInvalidRequest, customError.CodeOf(err))
	})

	t.Run("Failure - invalid payoff date", func(t *testing.T) {
		bad := *request
		bad.PayoffDate = "31.02"

		_, err := newTestService(nil, keyrate.Static{}).CalculatePayoff(context.Background(), &bad)

		assert.Equal(t, customError.ErrCodeInvalidDate, customError.CodeOf(err))
		assert.True(t, errors.Is(err, customError.ErrInvalidDate))
	})
}

func TestGetKeyRate(t *testing.T) {
	svc := newTestService(nil, keyrate.Static{Rate: decimal.RequireFromString("7.5")})
	rate, err := svc.GetKeyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7.5", rate.String())

	failing := newTestService(nil, keyrate.ProviderFunc(func(context.Context) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("timeout")
	}))
	_, err = failing.GetKeyRate(context.Background())
	assert.Equal(t, customError.ErrCodeKeyRateUnavailable, customError.CodeOf(err))
	assert.True(t, errors.Is(err, customError.ErrKeyRateUnavailable))
}

func TestGetCalculation(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		id         string
		setupMocks func(*mocks.MockCalculationRepository)
		errorCode  string
	}{
		{
			name: "found",
			id:   id.String(),
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("GetByID", mock.Anything, id).Return(&domain.Calculation{ID: id, Kind: domain.CalculationKindPayoff}, nil)
			},
		},
		{
			name: "not found",
			id:   id.String(),
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("GetByID", mock.Anything, id).Return(nil, customError.ErrCalculationNotFound)
			},
			errorCode: customError.ErrCodeCalculationNotFound,
		},
		{
			name: "database error",
			id:   id.String(),
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection reset"))
			},
			errorCode: customError.ErrCodeDatabaseError,
		},
		{
			name:       "malformed id",
			id:         "not-a-uuid",
			setupMocks: func(repo *mocks.MockCalculationRepository) {},
			errorCode:  customError.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockCalculationRepository{}
			tt.setupMocks(repo)

			calc, err := newTestService(repo, keyrate.Static{}).GetCalculation(context.Background(), tt.id)

			if tt.errorCode == "" {
				require.NoError(t, err)
				assert.Equal(t, id, calc.ID)
			} else {
				assert.Nil(t, calc)
				assert.Equal(t, tt.errorCode, customError.CodeOf(err))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestGetCalculation_WithoutRepository(t *testing.T) {
	_, err := newTestService(nil, keyrate.Static{}).GetCalculation(context.Background(), uuid.NewString())
	assert.Equal(t, customError.ErrCodeCalculationNotFound, customError.CodeOf(err))
}

func TestListCalculations(t *testing.T) {
	recent := []*domain.Calculation{{ID: uuid.New(), Kind: domain.CalculationKindPayoff}}

	tests := []struct {
		name       string
		kind       string
		limit      int
		setupMocks func(*mocks.MockCalculationRepository)
		expected   int
		errorCode  string
	}{
		{
			name:  "default limit",
			kind:  "",
			limit: 0,
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("ListRecent", mock.Anything, "", DefaultListLimit).Return(recent, nil)
			},
			expected: 1,
		},
		{
			name:  "filtered by kind",
			kind:  domain.CalculationKindPayoff,
			limit: 5,
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("ListRecent", mock.Anything, domain.CalculationKindPayoff, 5).Return(recent, nil)
			},
			expected: 1,
		},
		{
			name:       "unknown kind",
			kind:       "severance",
			setupMocks: func(repo *mocks.MockCalculationRepository) {},
			errorCode:  customError.ErrCodeInvalidRequest,
		},
		{
			name:       "limit too large",
			limit:      MaxListLimit + 1,
			setupMocks: func(repo *mocks.MockCalculationRepository) {},
			errorCode:  customError.ErrCodeInvalidRequest,
		},
		{
			name:  "database error",
			limit: 10,
			setupMocks: func(repo *mocks.MockCalculationRepository) {
				repo.On("ListRecent", mock.Anything, "", 10).Return(nil, errors.New("connection reset"))
			},
			errorCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockCalculationRepository{}
			tt.setupMocks(repo)

			calcs, err := newTestService(repo, keyrate.Static{}).ListCalculations(context.Background(), tt.kind, tt.limit)

			if tt.errorCode == "" {
				require.NoError(t, err)
				assert.Len(t, calcs, tt.expected)
			} else {
				assert.Equal(t, tt.errorCode, customError.CodeOf(err))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestListCalculations_WithoutRepository(t *testing.T) {
	calcs, err := newTestService(nil, keyrate.Static{}).ListCalculations(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, calcs)
}
