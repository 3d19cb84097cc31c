package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidConfig          = errors.New("invalid installment config")
	ErrInvalidArea            = errors.New("area outside configured bounds")
	ErrInvalidDuration        = errors.New("invalid or disallowed duration")
	ErrInvalidPaymentAmount   = errors.New("invalid payment amount")
	ErrDuplicatePlan          = errors.New("plan already exists for booking")
	ErrPlanNotFound           = errors.New("installment plan not found")
	ErrPropertyNotFound       = errors.New("property not found")
	ErrNoInstallmentOption    = errors.New("property offers no installment option")
	ErrPlanAlreadySettled     = errors.New("plan is already settled")
	ErrConcurrentModification = errors.New("plan was modified concurrently")
	ErrInvalidStatus          = errors.New("invalid plan status")
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
	ErrCodeInvalidConfig          = "INVALID_CONFIG"
	ErrCodeInvalidArea            = "INVALID_AREA"
	ErrCodeInvalidDuration        = "INVALID_DURATION"
	ErrCodeInvalidPaymentAmount   = "INVALID_PAYMENT_AMOUNT"
	ErrCodeDuplicatePlan          = "DUPLICATE_PLAN"
	ErrCodePlanNotFound           = "PLAN_NOT_FOUND"
	ErrCodePropertyNotFound       = "PROPERTY_NOT_FOUND"
	ErrCodeNoInstallmentOption    = "NO_INSTALLMENT_OPTION"
	ErrCodePlanAlreadySettled     = "PLAN_ALREADY_SETTLED"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeInvalidStatus          = "INVALID_STATUS"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidConfig(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidConfig,
		detail,
		ErrInvalidConfig,
	)
}

func WrapInvalidArea(area, minArea, maxArea string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidArea,
		fmt.Sprintf("Area %s is outside the allowed range [%s, %s]", area, minArea, maxArea),
		ErrInvalidArea,
	)
}

func WrapInvalidDuration(months int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDuration,
		fmt.Sprintf("Duration of %d months is not offered", months),
		ErrInvalidDuration,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapDuplicatePlan(bookingID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicatePlan,
		fmt.Sprintf("Booking %s already has an installment plan", bookingID),
		ErrDuplicatePlan,
	)
}

func WrapPlanNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("Installment plan %s not found", id),
		ErrPlanNotFound,
	)
}

func WrapPropertyNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePropertyNotFound,
		fmt.Sprintf("Property %s not found", id),
		ErrPropertyNotFound,
	)
}

func WrapNoInstallmentOption(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoInstallmentOption,
		fmt.Sprintf("Property %s does not offer installment payment", id),
		ErrNoInstallmentOption,
	)
}

func WrapPlanAlreadySettled(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanAlreadySettled,
		fmt.Sprintf("Installment plan %s is already paid in full", id),
		ErrPlanAlreadySettled,
	)
}

func WrapConcurrentModification(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		fmt.Sprintf("Installment plan %s was updated by another request", id),
		ErrConcurrentModification,
	)
}

func WrapInvalidStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatus,
		fmt.Sprintf("Unknown plan status %q", status),
		ErrInvalidStatus,
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
