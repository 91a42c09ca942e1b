package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/claim-calculator/internal/calculator"
	"github.com/segyhp/claim-calculator/internal/config"
	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/internal/repository"
	customError "github.com/segyhp/claim-calculator/pkg/errors"
	"github.com/segyhp/claim-calculator/pkg/utils"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type CalculatorService struct {
	// CalcRepo is optional, calculations are not recorded without it
	CalcRepo repository.CalculationRepository
	KeyRates keyrate.Provider
	config   *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewCalculatorService(
	calcRepo repository.CalculationRepository,
	keyRates keyrate.Provider,
	config *config.Config,
	logger *zap.Logger,
) *CalculatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalculatorService{
		CalcRepo: calcRepo,
		KeyRates: keyRates,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// CalculateForcedAbsence computes lost wages for a forced absence period
func (s *CalculatorService) CalculateForcedAbsence(ctx context.Context, request *domain.ForcedAbsenceRequest) (*domain.ForcedAbsenceResponse, error) {
	// 1. Resolve the first day of absence
	var start time.Time
	var err error
	if request.StartDate != "" {
		start, err = parseDate("start_date", request.StartDate)
	} else {
		var endWork time.Time
		endWork, err = parseDate("end_work_date", request.EndWorkDate)
		start = domain.ForcedAbsenceStart(endWork)
	}
	if err != nil {
		return nil, err
	}

	// 2. Reference date defaults to today
	reference, err := s.referenceDate(request.ReferenceDate)
	if err != nil {
		return nil, err
	}

	if request.AverageSalary.IsNegative() {
		return nil, customError.WrapInvalidRequest(errors.New("average_salary must not be negative"))
	}

	result := calculator.ForcedAbsence(domain.ForcedAbsencePeriod{
		StartDate:     start,
		ReferenceDate: reference,
		AverageSalary: request.AverageSalary,
	})

	s.logger.Info("forced absence calculated",
		zap.String("start_date", utils.FormatDate(start)),
		zap.String("reference_date", utils.FormatDate(reference)),
		zap.Int("total_days", result.TotalDays),
		zap.String("profit", utils.FormatMoney(result.Profit)),
	)

	response := &domain.ForcedAbsenceResponse{
		StartDate:     utils.FormatDate(start),
		ReferenceDate: utils.FormatDate(reference),
		Result:        result,
	}
	response.CalculationID = s.record(ctx, domain.CalculationKindForcedAbsence, request, result)

	return response, nil
}

// CalculatePayoff computes overdue payments and the key rate compensation.
// The key rate lookup is bounded by KEY_RATE_TIMEOUT; when it fails the
// result carries an unavailable compensation instead of an error.
func (s *CalculatorService) CalculatePayoff(ctx context.Context, request *domain.PayoffRequest) (*domain.PayoffResponse, error) {
	payoffDate, err := parseDate("payoff_date", request.PayoffDate)
	if err != nil {
		return nil, err
	}

	reference, err := s.referenceDate(request.ReferenceDate)
	if err != nil {
		return nil, err
	}

	if request.Payday1 < 1 || request.Payday1 > 31 || request.Payday2 < 0 || request.Payday2 > 31 {
		return nil, customError.WrapInvalidRequest(errors.New("paydays must be within 1..31, payday_2 may be 0"))
	}

	period := domain.PayoffPeriod{
		PayoffDate:    payoffDate,
		Payday1:       request.Payday1,
		Payment1:      request.Payment1,
		Payday2:       request.Payday2,
		Payment2:      request.Payment2,
		ReferenceDate: reference,
	}

	rateCtx, cancel := context.WithTimeout(ctx, s.config.GetKeyRateTimeout())
	defer cancel()

	result := calculator.Payoff(rateCtx, period, s.KeyRates)
	if !result.CompensationAvailable() {
		s.logger.Warn("payoff calculated without compensation",
			zap.String("payoff_date", utils.FormatDate(payoffDate)),
			zap.String("key_rate_error", result.KeyRateError),
		)
	} else {
		s.logger.Info("payoff calculated",
			zap.String("payoff_date", utils.FormatDate(payoffDate)),
			zap.String("reference_date", utils.FormatDate(reference)),
			zap.String("profit", result.Profit.String()),
			zap.String("compensation", utils.FormatMoney(result.Compensation.Decimal)),
		)
	}

	response := &domain.PayoffResponse{
		PayoffDate:    utils.FormatDate(payoffDate),
		ReferenceDate: utils.FormatDate(reference),
		Result:        result,
	}
	response.CalculationID = s.record(ctx, domain.CalculationKindPayoff, request, result)

	return response, nil
}

// GetKeyRate returns the current key rate or a KEY_RATE_UNAVAILABLE error
func (s *CalculatorService) GetKeyRate(ctx context.Context) (decimal.Decimal, error) {
	rateCtx, cancel := context.WithTimeout(ctx, s.config.GetKeyRateTimeout())
	defer cancel()

	rate, err := s.KeyRates.KeyRate(rateCtx)
	if err != nil {
		return decimal.Zero, customError.WrapKeyRateUnavailable(err)
	}
	return rate, nil
}

// GetCalculation returns a previously recorded calculation
func (s *CalculatorService) GetCalculation(ctx context.Context, id string) (*domain.Calculation, error) {
	calcID, err := uuid.Parse(id)
	if err != nil {
		return nil, customError.WrapInvalidRequest(err)
	}

	if s.CalcRepo == nil {
		return nil, customError.WrapCalculationNotFound(id)
	}

	calc, err := s.CalcRepo.GetByID(ctx, calcID)
	if errors.Is(err, customError.ErrCalculationNotFound) {
		return nil, customError.WrapCalculationNotFound(id)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return calc, nil
}

// ListCalculations returns the most recent calculations, newest first.
// kind may be empty to list every kind.
func (s *CalculatorService) ListCalculations(ctx context.Context, kind string, limit int) ([]*domain.Calculation, error) {
	switch kind {
	case "", domain.CalculationKindForcedAbsence, domain.CalculationKindPayoff:
	default:
		return nil, customError.WrapInvalidRequest(fmt.Errorf("unknown calculation kind %q", kind))
	}

	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, customError.WrapInvalidRequest(fmt.Errorf("limit must be within 1..%d", MaxListLimit))
	}

	if s.CalcRepo == nil {
		return []*domain.Calculation{}, nil
	}

	calcs, err := s.CalcRepo.ListRecent(ctx, kind, limit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return calcs, nil
}

// record stores the calculation and returns its ID. A failed write is logged
// and the result is still returned to the caller, without an ID.
func (s *CalculatorService) record(ctx context.Context, kind string, input, result interface{}) string {
	if s.CalcRepo == nil {
		return ""
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		s.logger.Error("failed to encode calculation input", zap.Error(err))
		return ""
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("failed to encode calculation result", zap.Error(err))
		return ""
	}

	calc := &domain.Calculation{
		ID:        uuid.New(),
		Kind:      kind,
		Input:     inputJSON,
		Result:    resultJSON,
		CreatedAt: s.now().UTC(),
	}
	if err := s.CalcRepo.Create(ctx, calc); err != nil {
		s.logger.Error("failed to record calculation",
			zap.String("kind", kind),
			zap.Error(customError.WrapDatabaseError(err)),
		)
		return ""
	}

	return calc.ID.String()
}

func (s *CalculatorService) referenceDate(raw string) (time.Time, error) {
	if raw == "" {
		return utils.DateOf(s.now().In(s.config.GetSchedulerLocation())), nil
	}
	return parseDate("reference_date", raw)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, customError.WrapInvalidDate(field, value, err)
	}
	return t, nil
}
