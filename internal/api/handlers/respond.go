package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskloft/taskloft-be/internal/apperr"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError translates the service error taxonomy into HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConstraint:
		status = http.StatusConflict
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindStorage:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Field: apperr.FieldOf(err)})
}
