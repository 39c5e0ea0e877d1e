package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by repositories. Services translate them into AppErrors.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrAlreadyEscalated = errors.New("already escalated")
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindUnauthenticated   ErrorKind = "UNAUTHENTICATED"
	KindInvalidCredential ErrorKind = "INVALID_CREDENTIAL"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindDependency        ErrorKind = "DEPENDENCY_FAILURE"
	KindPartialFailure    ErrorKind = "PARTIAL_FAILURE"
	KindInternal          ErrorKind = "INTERNAL_ERROR"
)

// AppError carries a kind that decides the HTTP status, a client safe message and the underlying cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, details map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

func NewInvalidCredentialError(message string, err error) *AppError {
	return &AppError{Kind: KindInvalidCredential, Message: message, Err: err}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewDependencyError(message string, err error) *AppError {
	return &AppError{Kind: KindDependency, Message: message, Err: err}
}

func NewPartialFailureError(message string, err error) *AppError {
	return &AppError{Kind: KindPartialFailure, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage is the text safe to show to clients.
func (e *AppError) PublicMessage() string {
	return e.Message
}
