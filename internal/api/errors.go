package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upstream failures.
type ErrorKind string

const (
	// KindTransport covers network failures and timeouts.
	KindTransport ErrorKind = "transport"
	// KindLogical is a response with success:false.
	KindLogical ErrorKind = "logical"
	// KindMalformed is a body that could not be decoded.
	KindMalformed ErrorKind = "malformed"
	// KindStatus is a non-2xx status without a usable error body.
	KindStatus ErrorKind = "status"
)

// Error describes a failed upstream call.
type Error struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s: status %d", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the server-provided error text when err carries one,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindLogical && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsKind reports whether err is an upstream error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
