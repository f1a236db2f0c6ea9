package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the domain layers.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain errors to the standard envelope. Unrecognized
// errors become a generic 500; their text never reaches the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, "Not Found", "Resource not found")
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, "Conflict", "A resource with the same identifying value already exists")
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, "Validation Error", "Invalid request payload")
	default:
		Error(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
	}
}
