package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindNotFound            Kind = "NOT_FOUND"
	KindCapacityExceeded    Kind = "CAPACITY_EXCEEDED"
	KindReferentialConflict Kind = "REFERENTIAL_CONFLICT"
	KindPersistence         Kind = "PERSISTENCE_FAILURE"
	KindInternal            Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:          http.StatusBadRequest,
	KindNotFound:            http.StatusNotFound,
	KindCapacityExceeded:    http.StatusConflict,
	KindReferentialConflict: http.StatusConflict,
	KindPersistence:         http.StatusServiceUnavailable,
	KindInternal:            http.StatusInternalServerError,
}

// HTTPStatus maps a kind to the status the request layer answers with.
func HTTPStatus(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a domain rejection carrying enough detail for a user-facing message.
type Error struct {
	kind    Kind
	message string
	details map[string]any
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{kind: kind, message: message, cause: err}
}

func Validation(format string, args ...any) *Error {
	return Newf(KindValidation, format, args...)
}

func NotFound(entity string, id any) *Error {
	return Newf(KindNotFound, "%s %v not found", entity, id).
		With("entity", entity).
		With("id", id)
}

// CapacityExceeded reports an attempt to log more pieces than an operation still needs.
func CapacityExceeded(requested, remaining, done, target int) *Error {
	return Newf(KindCapacityExceeded,
		"only %d pieces left for this operation (%d of %d already done)", remaining, done, target).
		With("requested", requested).
		With("remaining", remaining).
		With("done", done).
		With("target", target)
}

func ReferentialConflict(entity string, id any, references int) *Error {
	return Newf(KindReferentialConflict,
		"%s %v still has %d production records", entity, id, references).
		With("entity", entity).
		With("id", id).
		With("references", references)
}

func (e *Error) With(key string, value any) *Error {
	if e == nil {
		return nil
	}
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the first *Error in the chain, nil when there is none.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if typed := As(err); typed != nil {
		return typed.kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
