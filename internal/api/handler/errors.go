package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/auth"
)

const maxJSONBodyBytes = 1 << 20

// writeServiceError translates a service error into an error response.
// Messages of internal failures are replaced with a generic one.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	requestID := middleware.GetRequestID(r.Context())

	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.Internal {
		slog.Error("failed to "+action, "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
		return
	}

	if e.Kind == apperr.Transient {
		slog.Error("dependency unavailable while trying to "+action, "error", err, "requestId", requestID)
		response.Err(w, http.StatusServiceUnavailable, e.Code, "Service temporarily unavailable, please retry", requestID)
		return
	}

	response.Err(w, e.Kind.Status(), e.Code, e.Message, requestID)
}

// requireIdentity returns the caller's identity, writing a 401 when the
// request is unauthenticated.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return identity, true
}

// decodeJSON reads a size-limited JSON body into v, rejecting unknown
// fields. It writes the error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Err(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body is too large", requestID)
			return false
		}
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}
	return true
}

func validationFailed(w http.ResponseWriter, r *http.Request, details any) {
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, middleware.GetRequestID(r.Context()))
}
