package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("resource conflict") // e.g., email already registered
	ErrInternal     = errors.New("internal server error")

	// ErrInvalidState marks an operation against a problem or test case that has
	// not been synchronized with the remote judge yet.
	ErrInvalidState = errors.New("record not synchronized with remote judge")

	// ErrRemoteUnavailable is a transport-level failure talking to the judge.
	ErrRemoteUnavailable = errors.New("remote judge unavailable")
	// ErrRemoteRejected is a non-2xx judge response carrying a validation reason.
	ErrRemoteRejected = errors.New("remote judge rejected request")

	ErrCompilerNotFound = errors.New("no compiler matches requested language")

	// ErrPollTimeout is returned when a submission never reaches a terminal
	// verdict before the polling deadline elapses.
	ErrPollTimeout = errors.New("verdict polling deadline exceeded")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrRemoteRejected) || errors.Is(err, ErrCompilerNotFound) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRemoteUnavailable) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrPollTimeout) {
		return http.StatusGatewayTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
