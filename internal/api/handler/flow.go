package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/flow"
	"github.com/daap14/teamhub/internal/profile"
)

// ProfileReader loads a caller's profile.
type ProfileReader interface {
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

type flowResponse struct {
	Allow    bool    `json:"allow"`
	Redirect *string `json:"redirect"`
}

// FlowHandler handles GET /flow, telling the client whether the caller may
// open a page or where it should be sent instead.
type FlowHandler struct {
	profiles ProfileReader
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(profiles ProfileReader) *FlowHandler {
	return &FlowHandler{profiles: profiles}
}

// ServeHTTP decides access for the page in the "path" query parameter.
func (h *FlowHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "path is required", middleware.GetRequestID(r.Context()))
		return
	}

	state, err := h.state(r)
	if err != nil {
		writeServiceError(w, r, err, "resolve flow state")
		return
	}

	d := flow.Decide(state, path)
	resp := flowResponse{Allow: d.Allow}
	if !d.Allow {
		resp.Redirect = &d.Redirect
	}
	response.Success(w, http.StatusOK, resp)
}

func (h *FlowHandler) state(r *http.Request) (flow.State, error) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		return flow.State{}, nil
	}

	state := flow.State{Authenticated: true}
	p, err := h.profiles.Get(r.Context(), identity.ProfileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return state, nil
		}
		return flow.State{}, err
	}

	state.ProfileCompleted = p.ProfileCompleted
	if p.TeamID != nil {
		state.HasTeam = true
		state.TeamID = p.TeamID.String()
	}
	return state, nil
}
