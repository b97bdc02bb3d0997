package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error is the body of every non-2xx response.
type Error struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId"`
}

// Message is a success body that only carries a status message.
type Message struct {
	Message string `json:"message"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Success writes a successful JSON response. Success bodies are the resource
// itself, without a wrapper.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, data)
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, code string, message string, requestID string) {
	JSON(w, status, Error{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	})
}

// ErrWithDetails writes an error JSON response with additional details.
func ErrWithDetails(w http.ResponseWriter, status int, code string, message string, details any, requestID string) {
	JSON(w, status, Error{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: requestID,
	})
}
