package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/socdash/socdash/internal/api"
	"github.com/socdash/socdash/internal/middleware"
	"github.com/socdash/socdash/internal/services"
	"github.com/socdash/socdash/internal/sqlguard"
	"github.com/socdash/socdash/internal/store"
	"github.com/socdash/socdash/internal/upstream"
	"github.com/socdash/socdash/internal/utils"
)

// respondServiceError maps a service error to a status code and error code.
// Only the store's own message for a failed statement is passed through;
// everything else is logged and replaced with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		upErr     *upstream.Error
		execErr   *store.ExecutionError
		rejection *sqlguard.Rejection
	)
	requestID := middleware.GetRequestID(r.Context())

	switch {
	case errors.As(err, &upErr):
		log.Printf("Upstream failure on %s %s [%s]: %v", r.Method, r.URL.Path, requestID, err)
		details := map[string]string{"service": upErr.Service}
		if errors.As(err, &execErr) {
			details["store_message"] = execErr.Message
		}
		if upErr.Timeout {
			api.RespondErrorWithDetails(w, http.StatusServiceUnavailable, api.CodeTimeout,
				fmt.Sprintf("%s timed out", upErr.Service), details)
			return
		}
		api.RespondErrorWithDetails(w, http.StatusServiceUnavailable, api.CodeUnavailable,
			fmt.Sprintf("%s service offline", upErr.Service), details)

	case errors.As(err, &rejection):
		api.RespondErrorWithCode(w, http.StatusForbidden, api.CodeQueryRejected, rejection.Reason)

	case errors.As(err, &execErr):
		log.Printf("Query failed [%s]: %s", requestID, utils.TruncateText(execErr.Message, 300))
		api.RespondErrorWithCode(w, http.StatusInternalServerError, api.CodeExecution, execErr.Message)

	case errors.Is(err, services.ErrMalformedTriage):
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeMalformedTriage, err.Error())

	default:
		log.Printf("Request failed on %s %s [%s]: %v", r.Method, r.URL.Path, requestID, err)
		api.RespondErrorWithCode(w, http.StatusInternalServerError, api.CodeInternal, "Internal server error")
	}
}
