package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/daap14/teamhub/internal/api/response"
)

// PurgeRunner removes soft-deleted products past their retention window.
type PurgeRunner interface {
	RunOnce(ctx context.Context) (int64, error)
}

type cleanupResponse struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deleted_count"`
	Timestamp    string `json:"timestamp"`
}

// CleanupHandler handles POST /products-cleanup, the externally scheduled
// purge trigger.
type CleanupHandler struct {
	runner PurgeRunner
	now    func() time.Time
}

// NewCleanupHandler creates a new CleanupHandler.
func NewCleanupHandler(runner PurgeRunner) *CleanupHandler {
	return &CleanupHandler{runner: runner, now: time.Now}
}

// ServeHTTP runs one purge and reports how many products were removed.
func (h *CleanupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.runner.RunOnce(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "purge deleted products")
		return
	}

	response.Success(w, http.StatusOK, cleanupResponse{
		Success:      true,
		DeletedCount: n,
		Timestamp:    h.now().UTC().Format(time.RFC3339Nano),
	})
}
