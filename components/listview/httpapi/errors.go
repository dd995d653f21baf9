package httpapi

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-listview/components/listview"
)

// StatusFor maps listview errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, listview.ErrMissingViewer):
		return http.StatusUnauthorized
	case errors.Is(err, listview.ErrUnknownList),
		errors.Is(err, listview.ErrUnknownRequest),
		errors.Is(err, listview.ErrNotMounted):
		return http.StatusNotFound
	case errors.Is(err, listview.ErrRequestNotActive):
		return http.StatusConflict
	case errors.Is(err, listview.ErrMissingData), errors.Is(err, listview.ErrInvalidRecord):
		return http.StatusUnprocessableEntity
	case listview.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
