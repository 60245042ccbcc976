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
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidItemType          = NewDomainError(ErrCodeValidation, "invalid knowledge type")
	ErrInvalidSortField         = NewDomainError(ErrCodeValidation, "invalid sortBy field")
	ErrInvalidSortOrder         = NewDomainError(ErrCodeValidation, "invalid sortOrder value")
	ErrMissingRequiredField     = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidSourceURL         = NewDomainError(ErrCodeValidation, "source URL must be a valid http(s) URL")
	ErrTooManyTags              = NewDomainError(ErrCodeValidation, "too many tags")
	ErrWrongEmbeddingDimensions = NewDomainError(ErrCodeValidation, "embedding has wrong dimensions")
	ErrContentTooLong           = NewDomainError(ErrCodeValidation, "content is too long")
	ErrQuestionTooLong          = NewDomainError(ErrCodeValidation, "question is too long")
	ErrNoUpdatableFields        = NewDomainError(ErrCodeValidation, "no valid fields provided for update")
)

// Not found errors
var (
	ErrItemNotFound = NewDomainError(ErrCodeNotFound, "knowledge item not found")
)

// Internal errors
var (
	ErrEmbeddingFailed = NewDomainError(ErrCodeInternalError, "failed to generate embedding for similarity search")
)
