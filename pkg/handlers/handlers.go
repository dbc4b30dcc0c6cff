// Package handlers provides JSON response helpers and the result envelope
// shared by all API handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the outbound result wrapper. Exactly one of Result or Error
// is populated, matching the Success flag.
type Envelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondResult writes a success envelope wrapping result.
func RespondResult(w http.ResponseWriter, status int, result any) {
	RespondJSON(w, status, Envelope{Success: true, Result: result})
}

// RespondError logs the error and writes a failure envelope carrying its message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)
	RespondJSON(w, status, Envelope{Success: false, Error: err.Error()})
}
