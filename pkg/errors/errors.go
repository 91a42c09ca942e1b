package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidDate           = errors.New("invalid date")
	ErrKeyRateUnavailable    = errors.New("key rate unavailable")
	ErrCalculationNotFound   = errors.New("calculation not found")
	ErrCacheMiss             = errors.New("cache miss")
	ErrMalformedKeyRateReply = errors.New("malformed key rate response")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidDate         = "INVALID_DATE"
	ErrCodeKeyRateUnavailable  = "KEY_RATE_UNAVAILABLE"
	ErrCodeCalculationNotFound = "CALCULATION_NOT_FOUND"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// CodeOf returns the business code carried by err, or "" if there is none.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapInvalidRequest(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRequest,
		"request validation failed",
		fmt.Errorf("%w: %v", ErrInvalidRequest, err),
	)
}

func WrapInvalidDate(field, value string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDate,
		fmt.Sprintf("Field %s has invalid date %q", field, value),
		fmt.Errorf("%w: %v", ErrInvalidDate, err),
	)
}

func WrapKeyRateUnavailable(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeKeyRateUnavailable,
		"Key rate could not be retrieved",
		fmt.Errorf("%w: %v", ErrKeyRateUnavailable, err),
	)
}

func WrapCalculationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeCalculationNotFound,
		fmt.Sprintf("Calculation with ID %s not found", id),
		ErrCalculationNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
