package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the response envelope.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeAuthRequired      = "AUTH_REQUIRED"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeTokenInvalid      = "TOKEN_INVALID"
	CodeOwnershipRequired = "OWNERSHIP_REQUIRED"
	CodeAdminRequired     = "ADMIN_REQUIRED"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeReference         = "REFERENCE_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the application error type. It carries a machine-readable
// code, the HTTP status it maps to, and optional field-level details.
// Repositories translate store errors into AppErrors at one place so
// handlers never inspect driver errors.
type AppError struct {
	Code    string
	Status  int
	Message string
	Details []FieldError
	Err     error
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

// NewValidationError returns a 400 validation error with optional field details.
func NewValidationError(message string, details ...FieldError) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Status:  fiber.StatusBadRequest,
		Message: message,
		Details: details,
	}
}

// NewAuthenticationError returns an authentication error with the given
// code and status. The status varies by cause: missing or malformed
// credentials map to 401, expired tokens to 403.
func NewAuthenticationError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}

// NewAuthorizationError returns a 403 for a valid identity lacking rights.
func NewAuthorizationError(code, message string) *AppError {
	return &AppError{Code: code, Status: fiber.StatusForbidden, Message: message}
}

// NewNotFoundError returns a 404 for a missing resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewConflictError returns a 409 for a unique-constraint collision.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: fiber.StatusConflict, Message: message}
}

// NewReferenceError returns a 400 for a foreign-key violation.
func NewReferenceError(message string) *AppError {
	return &AppError{Code: CodeReference, Status: fiber.StatusBadRequest, Message: message}
}

// NewRateLimitError returns a 429.
func NewRateLimitError(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Status: fiber.StatusTooManyRequests, Message: message}
}

// NewInternalError wraps an unexpected error. The client-facing message is
// generic so internals never leak.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}
