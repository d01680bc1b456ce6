// Package apperr defines the sentinel errors shared by the storage layers and
// the HTTP handlers. Callers match them with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput reports malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict reports a duplicate identity (username or email).
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized reports bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound reports a missing file or record.
	ErrNotFound = errors.New("not found")
	// ErrRejectedType reports an upload whose content type is not accepted.
	ErrRejectedType = errors.New("content type not accepted")
	// ErrStorage reports a failure of the database or the object store.
	ErrStorage = errors.New("storage error")
)

// HTTPStatus maps an error onto the status code the API answers with.
// Unknown errors are internal.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrRejectedType):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
