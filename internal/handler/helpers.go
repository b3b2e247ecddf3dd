package handler

import (
	"errors"
	"net/http"

	"agentchain/internal/domain"
	"agentchain/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrBusy):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"busy": true,
		})
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409
// If the error is a ConflictError, it calls fetchFn to retrieve the existing resource
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func() (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		// Try to fetch existing resource
		existing, fetchErr := fetchFn()
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}

		// Return existing resource with 409 status
		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	// Not a conflict error, handle normally
	handleError(w, err)
}
