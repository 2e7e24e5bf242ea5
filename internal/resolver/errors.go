package resolver

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes resolution failures.
type ErrorCode string

const (
	// ErrCodeConfig indicates an unusable suffix format or generator. Never
	// retried.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeGenerator indicates a custom generator ran out of attempts or
	// failed.
	ErrCodeGenerator ErrorCode = "GENERATOR_ERROR"

	// ErrCodeStore indicates a store call failed. The store's error is kept
	// as the cause and resolution is aborted.
	ErrCodeStore ErrorCode = "STORE_ERROR"
)

// Error is returned by Resolve for every failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field is the unique field being resolved.
	Field string

	// Value is the candidate value being resolved.
	Value string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field=%s, value=%q)", e.Field, e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	return hasCode(err, ErrCodeConfig)
}

// IsGeneratorError reports whether err is a generator failure.
func IsGeneratorError(err error) bool {
	return hasCode(err, ErrCodeGenerator)
}

// IsStoreError reports whether err came from the store.
func IsStoreError(err error) bool {
	return hasCode(err, ErrCodeStore)
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewConfigError creates an Error for unusable configuration.
func NewConfigError(message string, cause error) *Error {
	return &Error{Code: ErrCodeConfig, Message: message, Err: cause}
}

// NewAttemptsError creates an Error for an exhausted custom generator.
func NewAttemptsError(field, value string, attempts int) *Error {
	return &Error{
		Code:    ErrCodeGenerator,
		Message: fmt.Sprintf("unable to generate unique value after %d attempts", attempts),
		Field:   field,
		Value:   value,
	}
}

func newStoreError(field, value string, err error) *Error {
	return &Error{
		Code:    ErrCodeStore,
		Message: "store lookup failed",
		Field:   field,
		Value:   value,
		Err:     err,
	}
}
