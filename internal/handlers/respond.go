package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/smart-recruiter/assessment-api/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError translates the service error taxonomy into HTTP exactly once.
// Conflict and Expired map to 400 like plain validation failures; only the
// error body distinguishes them.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindExpired:
		status = http.StatusBadRequest
		message = err.Error()
	case apperr.KindAuthorization:
		status = http.StatusForbidden
		message = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	}

	writeJSON(w, status, map[string]string{"message": message})
}
