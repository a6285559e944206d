package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidJobStatus         = NewDomainError(ErrCodeValidation, "invalid job status")
	ErrInvalidSourceKind        = NewDomainError(ErrCodeValidation, "invalid specialist source kind")
	ErrInvalidCharacteristicKind = NewDomainError(ErrCodeValidation, "invalid characteristic kind")
	ErrMissingRequiredField     = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrPageNotFound           = NewDomainError(ErrCodeNotFound, "page not found")
	ErrWorldNotFound          = NewDomainError(ErrCodeNotFound, "world not found")
	ErrConceptNotFound        = NewDomainError(ErrCodeNotFound, "concept not found")
	ErrAgentNotFound          = NewDomainError(ErrCodeNotFound, "agent not found")
	ErrCharacteristicNotFound = NewDomainError(ErrCodeNotFound, "characteristic not found")
	ErrSourceNotFound         = NewDomainError(ErrCodeNotFound, "specialist source not found")
	ErrJobNotFound            = NewDomainError(ErrCodeNotFound, "job not found")
)

// Operation errors
var (
	ErrJobTransition    = NewDomainError(ErrCodeInvalidOperation, "job status transition not allowed")
	ErrSourceUnreadable = NewDomainError(ErrCodeInternalError, "specialist source could not be read")
)
