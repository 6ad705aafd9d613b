package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Machine-readable error codes
const (
	CodeValidation      = "validation_error"
	CodeMalformedTriage = "malformed_triage_request"
	CodeQueryRejected   = "query_rejected"
	CodeUnavailable     = "upstream_unavailable"
	CodeTimeout         = "upstream_timeout"
	CodeExecution       = "execution_error"
	CodeInternal        = "internal_error"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes a standard error response.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErrorWithCode writes an error response with a machine-readable code.
func RespondErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// RespondErrorWithDetails writes an error response with a code and field details.
func RespondErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

// RespondValidationError writes field-level validation errors as a 400 response.
func RespondValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	RespondErrorWithDetails(w, http.StatusBadRequest, CodeValidation, "Validation failed", fieldErrors)
}

// RespondSuccess writes {"success": true}.
func RespondSuccess(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
