package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/claim-calculator/internal/domain"
	"github.com/segyhp/claim-calculator/internal/service"
	customError "github.com/segyhp/claim-calculator/pkg/errors"
	"github.com/segyhp/claim-calculator/pkg/response"
)

type CalculationHandler struct {
	service   *service.CalculatorService
	validator *validator.Validate
}

func NewCalculationHandler(service *service.CalculatorService) *CalculationHandler {
	return &CalculationHandler{
		service:   service,
		validator: newValidator(),
	}
}

// newValidator lets numeric tags such as gte=0 apply to decimal fields
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// CalculateForcedAbsence handles POST /calculations/forced-absence
func (h *CalculationHandler) CalculateForcedAbsence(w http.ResponseWriter, r *http.Request) {
	var request domain.ForcedAbsenceRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := h.service.CalculateForcedAbsence(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// CalculatePayoff handles POST /calculations/payoff
func (h *CalculationHandler) CalculatePayoff(w http.ResponseWriter, r *http.Request) {
	var request domain.PayoffRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := h.service.CalculatePayoff(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCalculation handles GET /calculations/{id}
func (h *CalculationHandler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.GetCalculation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, calc)
}

// ListCalculations handles GET /calculations?kind=&limit=
func (h *CalculationHandler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid limit", customError.WrapInvalidRequest(err))
			return
		}
		limit = parsed
	}

	calcs, err := h.service.ListCalculations(r.Context(), query.Get("kind"), limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, calcs)
}

// GetKeyRate handles GET /key-rate
func (h *CalculationHandler) GetKeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.GetKeyRate(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.KeyRateResponse{KeyRate: rate})
}

func (h *CalculationHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid JSON body", customError.WrapInvalidRequest(err))
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", customError.WrapInvalidRequest(err))
		return false
	}

	return true
}
