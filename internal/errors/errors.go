package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ProductionMode = os.Getenv("ENV") == "production" || os.Getenv("ENV") == "prod"

// SourceError is a coded connector error. Two SourceErrors match with errors.Is
// when their codes are equal, so wrapped sentinels keep their identity.
type SourceError struct {
	Code    string
	Message string
	cause   error
}

func (e *SourceError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *SourceError) Unwrap() error {
	return e.cause
}

func (e *SourceError) Is(target error) bool {
	if t, ok := target.(*SourceError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInvalidConfig   = &SourceError{Code: "S1000", Message: "Invalid configuration"}
	ErrUnsupported     = &SourceError{Code: "S1001", Message: "Unsupported engine"}
	ErrUnknownStream   = &SourceError{Code: "S2000", Message: "Stream not found in source"}
	ErrInvalidCursor   = &SourceError{Code: "S2001", Message: "Invalid cursor field"}
	ErrInvalidState    = &SourceError{Code: "S2002", Message: "Invalid state"}
	ErrInvalidCatalog  = &SourceError{Code: "S2003", Message: "Invalid configured catalog"}
	ErrDiscoverFailed  = &SourceError{Code: "S3000", Message: "Discovery failed"}
	ErrReadFailed      = &SourceError{Code: "S3001", Message: "Read failed"}
	ErrRawQueryFailed  = &SourceError{Code: "S3002", Message: "Query failed"}
	ErrContainerFailed = &SourceError{Code: "S4000", Message: "Container did not become healthy"}

	ErrAuthenticationFailed = &SourceError{Code: "C1000", Message: "Authentication failed"}
	ErrConnectionFailed     = &SourceError{Code: "C1001", Message: "Database not reachable"}
	ErrDatabaseNotFound     = &SourceError{Code: "C1003", Message: "Database does not exist"}
	ErrTimeout              = &SourceError{Code: "C1008", Message: "Operation timeout"}
	ErrTableNotFound        = &SourceError{Code: "C2021", Message: "Table does not exist"}
)

func Wrap(sentinel *SourceError, cause error) *SourceError {
	return &SourceError{Code: sentinel.Code, Message: sentinel.Message, cause: cause}
}

// Wrapf wraps cause under sentinel with extra context in the message.
func Wrapf(sentinel *SourceError, cause error, format string, args ...interface{}) *SourceError {
	return &SourceError{
		Code:    sentinel.Code,
		Message: sentinel.Message + ": " + fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func IsAuthenticationFailed(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

func IsConnectionFailed(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func contains(err error, needles ...string) bool {
	errStr := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(errStr, n) {
			return true
		}
	}
	return false
}

// ClickHouse 516/192, MySQL 1045, PostgreSQL 28P01/28000.
func isAuthFailure(err error) bool {
	return contains(err,
		"authentication failed",
		"code: 516",
		"code: 192",
		"error 1045",
		"access denied",
		"28p01",
		"password authentication failed",
	)
}

// ClickHouse 81, MySQL 1049, PostgreSQL 3D000.
func isUnknownDatabase(err error) bool {
	return contains(err,
		"code: 81",
		"unknown database",
		"error 1049",
		"3d000",
	) || (contains(err, "database") && contains(err, "does not exist"))
}

func isUnknownTable(err error) bool {
	return contains(err,
		"code: 60",
		"no such table",
		"error 1146",
		"42p01",
	)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return contains(err, "timeout", "timed out", "deadline exceeded")
}

func isConnectionError(err error) bool {
	return contains(err,
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"broken pipe",
		"eof",
	)
}

// Classify maps a driver error onto the matching connection sentinel. Errors that
// are already SourceErrors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var se *SourceError
	if errors.As(err, &se) {
		return err
	}

	switch {
	case isAuthFailure(err):
		return Wrap(ErrAuthenticationFailed, err)
	case isUnknownDatabase(err):
		return Wrap(ErrDatabaseNotFound, err)
	case isUnknownTable(err):
		return Wrap(ErrTableNotFound, err)
	case isTimeout(err):
		return Wrap(ErrTimeout, err)
	case isConnectionError(err):
		return Wrap(ErrConnectionFailed, err)
	}

	return Wrap(ErrRawQueryFailed, err)
}

// Code returns the SourceError code carried by err, or "" if none.
func Code(err error) string {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// SanitizeError hides driver details in production so that messages surfaced
// through CONNECTION_STATUS do not leak hostnames or SQL.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	if !ProductionMode {
		return err
	}

	var se *SourceError
	if errors.As(err, &se) {
		return fmt.Errorf("%s", se.Message)
	}
	return fmt.Errorf("database operation failed")
}
