package models

import (
	"errors"
	"fmt"
)

// Base error kinds, matched with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// DomainError carries the operation that failed together with its kind.
type DomainError struct {
	Domain  string // "film", "user", "like", "friendship", "popularity"
	Op      string // operation that failed, e.g. "AddLike"
	Kind    error  // ErrNotFound or ErrInvalidArgument
	Message string
	Err     error // underlying error (optional)
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches either the kind or the wrapped error.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NotFound builds a not-found error for an entity id.
func NotFound(domain, op string, kind EntityKind, id int64) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s %d not found", kind, id),
	}
}

// InvalidArgument builds an invalid-argument error.
func InvalidArgument(domain, op, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrInvalidArgument,
		Message: message,
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument checks if the error is an "invalid argument" error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
