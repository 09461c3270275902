package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

func writeError(w http.ResponseWriter, code ErrorCode, message string) {
	writeJSON(w, code.status(), errorResponse{Error: message, Code: code})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, CodeMethodNotAllowed, "method not allowed")
}

// decodeBody rejects unknown fields so a client typo surfaces as a 400.
func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return badRequest("invalid request body", err)
	}
	return nil
}

// writeServiceError answers with the code and message of a ServiceError.
// Wrapped causes and errors of any other type never reach the client.
func writeServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		writeError(w, CodeInternal, "internal error")
		return
	}
	writeError(w, svcErr.Code, svcErr.Message)
}
