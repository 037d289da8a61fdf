package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hermannm.dev/wrap"
)

// InvalidFilterError is returned before any query is run, when the caller's filter, factors or
// pagination cannot be compiled.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func newInvalidFilterError(field string, reasonFormat string, args ...any) *InvalidFilterError {
	return &InvalidFilterError{Field: field, Reason: fmt.Sprintf(reasonFormat, args...)}
}

func (err *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter field '%s': %s", err.Field, err.Reason)
}

// TimeoutError is returned when a query exceeded the statement timeout. Retrying with a narrower
// filter may succeed.
type TimeoutError struct {
	Cause error
}

func (err *TimeoutError) Error() string {
	return fmt.Sprintf(
		"query exceeded statement timeout of %s: %s",
		StatementTimeout,
		err.Cause.Error(),
	)
}

func (err *TimeoutError) Unwrap() error {
	return err.Cause
}

// DatabaseError is any other failure from the database or its driver.
type DatabaseError struct {
	Cause error
}

func (err *DatabaseError) Error() string {
	return err.Cause.Error()
}

func (err *DatabaseError) Unwrap() error {
	return err.Cause
}

// ClassifyError turns an error from a database round trip into a TimeoutError or a
// DatabaseError, wrapping it with the given message. isTimeout recognizes backend-specific
// timeout signatures, and may be nil. Errors that are already classified are returned as-is.
func ClassifyError(err error, message string, isTimeout func(error) bool) error {
	if err == nil {
		return nil
	}

	var invalidFilterErr *InvalidFilterError
	var timeoutErr *TimeoutError
	var databaseErr *DatabaseError
	if errors.As(err, &invalidFilterErr) || errors.As(err, &timeoutErr) ||
		errors.As(err, &databaseErr) {
		return err
	}

	wrapped := wrap.Error(err, message)

	if errors.Is(err, context.DeadlineExceeded) ||
		(isTimeout != nil && isTimeout(err)) ||
		hasTimeoutMessage(err) {
		return &TimeoutError{Cause: wrapped}
	}

	return &DatabaseError{Cause: wrapped}
}

// Only the innermost cause is matched, since wrapping messages added by backends may mention
// timeouts without the failure being one.
func hasTimeoutMessage(err error) bool {
	for {
		cause := errors.Unwrap(err)
		if cause == nil {
			break
		}
		err = cause
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
