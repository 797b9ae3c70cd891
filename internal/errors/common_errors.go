package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Whole-file failures. Any of these means no table is produced.
	ErrTypeStructural        ErrorType = "STRUCTURAL"
	ErrTypeUnsupportedFormat ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeStrictViolation   ErrorType = "STRICT_VIOLATION"

	// Expiration resolver failures. Parsers turn these into row skips.
	ErrTypeUnknownProduct     ErrorType = "UNKNOWN_PRODUCT"
	ErrTypeExpirationNotFound ErrorType = "EXPIRATION_NOT_FOUND"

	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewStructuralError creates an error for a file that cannot be parsed as a whole,
// or for a record that violates a model invariant.
func NewStructuralError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStructural, message, cause)
}

// NewUnsupportedFormatError creates an error for an unrecognized file layout
func NewUnsupportedFormatError(message string) *AppError {
	return NewAppError(ErrTypeUnsupportedFormat, message, nil)
}

// NewStrictViolationError creates the error raised when strict mode meets a skipped row
func NewStrictViolationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStrictViolation, message, cause)
}

// NewUnknownProductError creates a resolver error for an unregistered product
func NewUnknownProductError(product string) *AppError {
	return NewAppError(ErrTypeUnknownProduct, fmt.Sprintf("unknown product %q", product), nil).
		WithContext("product", product)
}

// NewExpirationNotFoundError creates a resolver error for a contract with no valid expiration
func NewExpirationNotFoundError(product, message string) *AppError {
	return NewAppError(ErrTypeExpirationNotFound, message, nil).
		WithContext("product", product)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the type of the first AppError in err's chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err's chain contains an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsStructural reports whether err is a whole-file failure.
func IsStructural(err error) bool {
	switch TypeOf(err) {
	case ErrTypeStructural, ErrTypeUnsupportedFormat, ErrTypeStrictViolation:
		return true
	}
	return false
}

// IsResolverError reports whether err came from the expiration resolver.
func IsResolverError(err error) bool {
	switch TypeOf(err) {
	case ErrTypeUnknownProduct, ErrTypeExpirationNotFound:
		return true
	}
	return false
}
