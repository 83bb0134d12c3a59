package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
	"github.com/hoomlabs/hoom/internal/store"
)

// inputError is a form or body value that could not be parsed.
type inputError struct {
	field string
	err   error
}

func (e *inputError) Error() string {
	return "invalid " + e.field + ": " + e.err.Error()
}

func (e *inputError) Unwrap() error { return e.err }

// statusFor maps an operation error to its HTTP status: validation 422,
// referential integrity 409, unknown rows 404, anything else from the
// store 502.
func statusFor(err error) int {
	var ie *inputError
	switch {
	case errors.As(err, &ie),
		errors.Is(err, promoter.ErrNameRequired),
		errors.Is(err, listing.ErrPhotoNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, promoter.ErrInUse), errors.Is(err, store.ErrReferenced):
		return http.StatusConflict
	case errors.Is(err, listing.ErrNotFound), errors.Is(err, promoter.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// userMessage is the text shown for err.
func userMessage(err error) string {
	switch {
	case errors.Is(err, promoter.ErrNameRequired):
		return "Name is required."
	case errors.Is(err, promoter.ErrInUse):
		return "Cannot delete this promoter: it is still assigned to one or more listings. Reassign or delete those listings first."
	case errors.Is(err, store.ErrReferenced):
		return "The change was rejected because related records still point at this one."
	case errors.Is(err, listing.ErrNotFound):
		return "That listing no longer exists."
	case errors.Is(err, promoter.ErrNotFound):
		return "That promoter no longer exists."
	case errors.Is(err, listing.ErrPhotoNotFound):
		return "That photo is not part of this listing."
	}
	var ie *inputError
	if errors.As(err, &ie) {
		return "Invalid value for " + ie.field + "."
	}
	return "The data store request failed: " + err.Error()
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
