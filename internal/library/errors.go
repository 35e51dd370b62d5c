package library

import (
	"errors"
	"fmt"
)

// Kind classifies a library failure. The value doubles as the GraphQL error
// code reported under extensions.code.
type Kind string

const (
	KindUnknownField         Kind = "UNKNOWN_FIELD"
	KindInvalidArgument      Kind = "INVALID_ARGUMENT"
	KindReferentialViolation Kind = "REFERENTIAL_VIOLATION"
	KindDuplicateID          Kind = "DUPLICATE_ID"
	KindDepthLimitExceeded   Kind = "DEPTH_LIMIT_EXCEEDED"
)

// Error is the error type returned by the store, the registry and resolvers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode implements executor.CodedError.
func (e *Error) ErrorCode() string { return string(e.Kind) }

func errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err or any error it wraps is a library error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
