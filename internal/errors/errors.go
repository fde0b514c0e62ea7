// Package errors defines the error taxonomy shared by the invoicing core and
// the HTTP boundary. Callers mark errors with one of the sentinel kinds and the
// boundary maps the kind to a status code.
package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")

	// Sub-kinds. Errors marked with one of these are also marked with their
	// parent kind by the helpers below.
	ErrInvalidLineItem   = errors.New("invalid line item")
	ErrInvalidTaxRate    = errors.New("invalid tax rate")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMalformedDigest   = errors.New("malformed password digest")
)

var statusCodeMap = []struct {
	kind   error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrNotFound, http.StatusNotFound},
	{ErrConflict, http.StatusConflict},
	{ErrInternal, http.StatusInternalServerError},
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Validation failed",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusNotFound:            "Resource not found",
	http.StatusConflict:            "Resource already exists",
	http.StatusInternalServerError: "An Internal Error Occurred",
}

// HTTPStatusFromErr maps an error to the status code of its kind. Unmarked
// errors are treated as internal.
func HTTPStatusFromErr(err error) int {
	for _, m := range statusCodeMap {
		if errors.Is(err, m.kind) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// DisplayMessage returns the caller-facing message for err. Internal errors
// always get the opaque default so backend details never leak.
func DisplayMessage(err error) string {
	status := HTTPStatusFromErr(err)
	if status == http.StatusInternalServerError {
		return defaultMessages[status]
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return defaultMessages[status]
}

func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }
func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }

// IsInternal reports whether err is internal, either explicitly or because it
// carries no known kind.
func IsInternal(err error) bool {
	return HTTPStatusFromErr(err) == http.StatusInternalServerError
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
