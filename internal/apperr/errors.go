// Package apperr defines the typed failures surfaced by the storage core.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

// Error kinds.
const (
	KindNotFound    Kind = "not_found"
	KindStorage     Kind = "storage"
	KindQuerySyntax Kind = "query_syntax"
	KindIO          Kind = "io"
	KindLock        Kind = "lock"
	KindInvalid     Kind = "invalid"
)

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrNotFound    = errors.New("not found")
	ErrStorage     = errors.New("storage error")
	ErrQuerySyntax = errors.New("query syntax error")
	ErrIO          = errors.New("io error")
	ErrLock        = errors.New("lock error")
	ErrInvalid     = errors.New("invalid argument")
)

// Error is a structured failure. Entity and ID identify the record for
// NotFound; Op names the operation that failed.
type Error struct {
	Kind   Kind
	Op     string
	Entity string
	ID     string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var s string
	switch {
	case e.Kind == KindNotFound && e.Entity != "":
		s = fmt.Sprintf("%s %s not found", e.Entity, e.ID)
	case e.Msg != "":
		s = e.Msg
	default:
		s = string(e.Kind)
	}
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels. A query syntax error is also a storage error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrStorage:
		return e.Kind == KindStorage || e.Kind == KindQuerySyntax
	case ErrQuerySyntax:
		return e.Kind == KindQuerySyntax
	case ErrIO:
		return e.Kind == KindIO
	case ErrLock:
		return e.Kind == KindLock
	case ErrInvalid:
		return e.Kind == KindInvalid
	}
	return false
}

// NotFound reports a missing entity of the given kind.
func NotFound(op, entity, id string) error {
	return &Error{Kind: KindNotFound, Op: op, Entity: entity, ID: id}
}

// Storage wraps an engine failure. A nil err yields nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// QuerySyntax wraps a rejected full-text query.
func QuerySyntax(op string, err error) error {
	return &Error{Kind: KindQuerySyntax, Op: op, Err: err}
}

// IO wraps a filesystem failure.
func IO(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}

// Lock reports a failure to acquire exclusive access.
func Lock(op string, err error) error {
	return &Error{Kind: KindLock, Op: op, Err: err}
}

// Invalid reports a rejected argument.
func Invalid(op, msg string) error {
	return &Error{Kind: KindInvalid, Op: op, Msg: msg}
}

// KindOf returns the kind of err, or "" when err carries no *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
