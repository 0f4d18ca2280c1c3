// Package apperr holds the error kinds shared by every domain package. Domain
// errors wrap one of these sentinels so transports can classify a failure with
// errors.Is without knowing the domain.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrPolicy          = errors.New("refused by policy")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
	ErrUpstream        = errors.New("upstream failure")
	ErrInternal        = errors.New("internal error")
)

// Validation returns an ErrValidation carrying a client-facing message.
func Validation(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Policy returns an ErrPolicy carrying a client-facing message.
func Policy(format string, args ...any) error {
	return &kindError{kind: ErrPolicy, msg: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure. Errors that already carry a kind, such
// as a domain not-found sentinel, pass through unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Classified reports whether err wraps one of the package sentinels.
func Classified(err error) bool {
	for _, kind := range []error{ErrValidation, ErrUnauthenticated, ErrForbidden, ErrPolicy, ErrNotFound, ErrStorage, ErrUpstream, ErrInternal} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

// Message returns the text intended for the caller: the message of a
// Validation error or of a wrapped sentinel, otherwise the error string.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return err.Error()
}

// UpstreamError describes a failed call to an external service.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s error [%d]: %s", e.Service, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Service, e.Err)
	default:
		return fmt.Sprintf("%s error", e.Service)
	}
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}
