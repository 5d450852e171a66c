package common

import (
	"errors"
	"fmt"
)

var (
	// repository specific errors
	ErrorNotFound    = errors.New("not found")
	ErrBatchTooLarge = errors.New("batch too large")

	// service specific errors
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorUnavailable   = errors.New("unavailable")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Validation codes returned to HTTP clients with status 400.
const (
	CodeInvalidJSON      = "INVALID_JSON"
	CodeMissingFields    = "MISSING_FIELDS"
	CodePasswordTooShort = "PASSWORD_TOO_SHORT"
	CodeInvalidProfit    = "INVALID_PROFIT"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeInvalidResult    = "INVALID_RESULT"
	CodeInvalidDate      = "INVALID_DATE"
	CodeInvalidPlan      = "INVALID_PLAN"
	CodeInvalidBody      = "INVALID_BODY"
	CodeInvalidPaging    = "INVALID_PAGING"
	CodeTooManySteps     = "TOO_MANY_STEPS"
)

// ValidationError reports rejected client input. Code is the machine-readable
// value sent back in the "error" field of the response.
type ValidationError struct {
	Code   string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation error: " + e.Code
	}
	return fmt.Sprintf("validation error: %s: %s", e.Code, e.Detail)
}

// NewValidationError builds a ValidationError with an optional detail message.
func NewValidationError(code string, detail string) error {
	return &ValidationError{Code: code, Detail: detail}
}
