package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource already exists")
	ErrInternalServer = errors.New("internal server error")
	ErrTimeout        = errors.New("dependency timed out")
)

// Download pipeline errors
var (
	ErrMissingParameter     = errors.New("missing parameter")
	ErrNoCredential         = errors.New("no credential")
	ErrInvalidCredential    = errors.New("invalid or expired credential")
	ErrRoleLookupFailed     = errors.New("role lookup failed")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrInsufficientRole     = errors.New("insufficient role")
	ErrURLIssuanceExhausted = errors.New("signed url issuance exhausted")
	ErrCounterUpdateFailed  = errors.New("download counter update failed")
	ErrDependencyFailure    = errors.New("unexpected dependency failure")
)

// Custom error type with context
type AppError struct {
	Code    string
	Message string
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

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: msg, Err: ErrBadRequest}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

func InternalServer(msg string, err error) *AppError {
	return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: err}
}

func MissingParameter(name string) *AppError {
	return &AppError{Code: "MISSING_PARAMETER", Message: fmt.Sprintf("missing required parameter: %s", name), Err: ErrMissingParameter}
}

func NoCredential() *AppError {
	return &AppError{Code: "NO_CREDENTIAL", Message: "authorization header must use the Bearer scheme", Err: ErrNoCredential}
}

// InvalidCredential keeps the verification failure as detail for server-side logs.
func InvalidCredential(cause error) *AppError {
	return &AppError{Code: "INVALID_CREDENTIAL", Message: "invalid or expired credential", Err: errors.Join(ErrInvalidCredential, cause)}
}

func RoleLookupFailed(cause error) *AppError {
	return &AppError{Code: "ROLE_LOOKUP_FAILED", Message: "could not resolve caller role", Err: errors.Join(ErrRoleLookupFailed, cause)}
}

func ResourceNotFound() *AppError {
	return &AppError{Code: "RESOURCE_NOT_FOUND", Message: "post not found", Err: ErrResourceNotFound}
}

func InsufficientRole(required string) *AppError {
	return &AppError{Code: "INSUFFICIENT_ROLE", Message: fmt.Sprintf("insufficient role: this file requires %s", required), Err: ErrInsufficientRole}
}

func URLIssuanceExhausted(attempts int, last error) *AppError {
	return &AppError{
		Code:    "URL_ISSUANCE_EXHAUSTED",
		Message: fmt.Sprintf("could not issue download url after %d attempts", attempts),
		Err:     errors.Join(ErrURLIssuanceExhausted, last),
	}
}

func DependencyFailure(msg string, cause error) *AppError {
	return &AppError{Code: "DEPENDENCY_FAILURE", Message: msg, Err: errors.Join(ErrDependencyFailure, cause)}
}
