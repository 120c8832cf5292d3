package erezept

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies the expected failure modes of prescription operations.
// Transports map kinds explicitly onto their wire representation instead of
// inspecting error types at runtime.
type Kind int

const (
	// KindInternal covers storage failures and anything unexpected.
	KindInternal Kind = iota
	// KindNotFound means the referenced record does not exist.
	KindNotFound
	// KindConflict means a duplicate identifier or business key.
	KindConflict
	// KindValidation means the payload failed field constraints.
	KindValidation
)

// Error is the closed error variant used by the service and both transports.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP status code equivalent of the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func validationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: fields}
}

// KindOf extracts the kind from err, or KindInternal when err is not a
// domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError returns the domain error inside err, or nil.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}
