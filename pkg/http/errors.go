package http

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation      = "validation_error"
	CodeNotFound        = "not_found"
	CodeTooManyRequests = "too_many_requests"
	CodeInternal        = "internal_error"
)

// AppError is the error envelope written by the API.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error. It is never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// ValidationFailed creates a 400 error tied to a request field.
func ValidationFailed(field, message string) *AppError {
	return NewAppError(CodeValidation, field, message, http.StatusBadRequest)
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, "", message, http.StatusNotFound)
}

// NotFoundf creates a 404 error with formatting.
func NotFoundf(format string, a ...interface{}) *AppError {
	return NotFound(fmt.Sprintf(format, a...))
}

// TooManyRequests creates a 429 error.
func TooManyRequests(message string) *AppError {
	return NewAppError(CodeTooManyRequests, "", message, http.StatusTooManyRequests)
}

// Internal creates a 500 error.
func Internal(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
