package errors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure exposed to API clients.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeForbidden          Code = "FORBIDDEN"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Status returns the HTTP status code for c.
func (c Code) Status() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeDuplicateEmail:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidCredentials, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = New(CodeDuplicateEmail, "user with this email already exists")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = New(CodeNotFound, "user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid email or password")
	// ErrInvalidToken is returned for missing, malformed, expired or revoked tokens.
	ErrInvalidToken = New(CodeInvalidToken, "invalid or expired token")
	// ErrForbidden is returned when the caller may not perform the operation.
	ErrForbidden = New(CodeForbidden, "forbidden")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a domain error carrying a structured code.
type Error struct {
	Code    Code
	Message string
	Details []FieldError
}

// New creates a new domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation builds a validation error from field errors.
func Validation(details []FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Details: details}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a different message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Message: message, Details: e.Details}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. The second result is
// false when err carries no domain code and was mapped to a generic 500.
func MapErrorToHTTP(err error) (*HTTPError, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return &HTTPError{
			StatusCode: domainErr.Code.Status(),
			Message:    domainErr.Message,
			Code:       string(domainErr.Code),
			Details:    domainErr.Details,
		}, true
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", string(CodeInternal)), false
}
