package utils

import (
	"encoding/json"
	"net/http"

	"USER_REGISTRATION_BACK-END/internal/dto"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a dto.ErrorResponse with the given status
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message})
}

// WriteFieldErrors writes a validation failure with per-field messages.
// Messages not tied to a field go under dto.NonFieldErrors.
func WriteFieldErrors(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: message,
		Fields:  fields,
	})
}
