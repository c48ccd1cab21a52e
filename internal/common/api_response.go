package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/logging"
	"fleetops/vanlist/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: responseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: responseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondServiceError maps the typed service error kinds onto their HTTP
// status codes: validation 400, not-found 404, conflict 409, anything else 500.
func RespondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	switch {
	case apperrors.IsValidation(err):
		RespondError(w, initTime, err, "", http.StatusBadRequest)
	case apperrors.IsNotFound(err):
		RespondError(w, initTime, err, "", http.StatusNotFound)
	case apperrors.IsConflict(err):
		RespondError(w, initTime, err, "", http.StatusConflict)
	default:
		RespondError(w, initTime, err, "Internal server error", http.StatusInternalServerError)
	}
}

func responseTime(initTime time.Time) string {
	return fmt.Sprintf("%dms", time.Since(initTime).Milliseconds())
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
