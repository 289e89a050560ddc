// Package apperr defines the closed set of error codes the service layer returns.
// Handlers translate a Code into an HTTP status and a user-facing message; nothing
// above the repository layer inspects error text.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Code string

const (
	CodeValidation        Code = "validation"
	CodeUnauthenticated   Code = "unauthenticated"
	CodePermissionDenied  Code = "permission_denied"
	CodeNotFound          Code = "not_found"
	CodeConflict          Code = "conflict"
	CodeInvalidTransition Code = "invalid_transition"
	CodeRateLimited       Code = "rate_limited"
	CodeUnavailable       Code = "unavailable"
	CodeInternal          Code = "internal"
)

// Error carries a stable Code plus a message safe to show to the caller.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.NotFound("")) match on code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Validation(message string) *Error       { return New(CodeValidation, message) }
func Unauthenticated(message string) *Error  { return New(CodeUnauthenticated, message) }
func PermissionDenied(message string) *Error { return New(CodePermissionDenied, message) }
func NotFound(message string) *Error         { return New(CodeNotFound, message) }
func Conflict(message string) *Error         { return New(CodeConflict, message) }
func InvalidTransition(message string) *Error {
	return New(CodeInvalidTransition, message)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// PostgreSQL SQLSTATE values we classify.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
	sqlStateNotNullViolation    = "23502"
	sqlStateInsufficientPriv    = "42501"
)

// FromDB classifies a persistence error. Already classified errors pass through.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(CodeNotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(CodeConflict, "record already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Wrap(CodeNotFound, "referenced record not found", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(CodeUnavailable, "request cancelled", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return Wrap(CodeConflict, "record already exists", err)
		case sqlStateForeignKeyViolation:
			return Wrap(CodeNotFound, "referenced record not found", err)
		case sqlStateCheckViolation, sqlStateNotNullViolation:
			return Wrap(CodeValidation, "invalid value", err)
		case sqlStateInsufficientPriv:
			return Wrap(CodePermissionDenied, "permission denied", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Wrap(CodeUnavailable, "database unreachable", err)
	}

	return Wrap(CodeInternal, "database error", err)
}

// HTTPStatus maps a code to the status a handler should answer with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
