package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/profile"
	"github.com/daap14/teamhub/internal/team"
)

// TeamService is the team membership workflow used by TeamHandler.
type TeamService interface {
	Create(ctx context.Context, profileID uuid.UUID, name, slug string) (*team.Team, error)
	Join(ctx context.Context, profileID uuid.UUID, inviteCode string) (*team.Team, error)
	Get(ctx context.Context, profileID, teamID uuid.UUID) (*team.Team, error)
	Members(ctx context.Context, profileID uuid.UUID) ([]profile.Profile, error)
}

// teamActionRequest is the request body for POST /team-actions.
type teamActionRequest struct {
	Action  string `json:"action"`
	Payload struct {
		Name       string `json:"name"`
		Slug       string `json:"slug"`
		InviteCode string `json:"inviteCode"`
	} `json:"payload"`
}

type teamActionResponse struct {
	Message string       `json:"message"`
	Team    teamResponse `json:"team"`
}

// TeamHandler handles team endpoints.
type TeamHandler struct {
	teams TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Action handles POST /team-actions: creating a team or joining one by
// invite code.
func (h *TeamHandler) Action(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req teamActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))

	if fieldErrors := validation.ValidateTeamActionRequest(validation.TeamActionRequest{
		Action:     req.Action,
		Name:       req.Payload.Name,
		Slug:       req.Payload.Slug,
		InviteCode: req.Payload.InviteCode,
	}); len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}

	var (
		t       *team.Team
		err     error
		message string
	)
	switch req.Action {
	case validation.TeamActionCreate:
		t, err = h.teams.Create(r.Context(), identity.ProfileID, req.Payload.Name, req.Payload.Slug)
		message = "Team created successfully"
	case validation.TeamActionJoin:
		t, err = h.teams.Join(r.Context(), identity.ProfileID, req.Payload.InviteCode)
		message = "Joined team successfully"
	}
	if err != nil {
		writeServiceError(w, r, err, req.Action+" team")
		return
	}

	response.Success(w, http.StatusOK, teamActionResponse{Message: message, Team: toTeamResponse(t)})
}

// Get handles GET /teams?id={id}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Team ID is required", requestID)
		return
	}
	teamID, err := uuid.Parse(raw)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	t, err := h.teams.Get(r.Context(), identity.ProfileID, teamID)
	if err != nil {
		writeServiceError(w, r, err, "get team")
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t))
}

// Members handles GET /teams/members, listing the caller's teammates.
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	members, err := h.teams.Members(r.Context(), identity.ProfileID)
	if err != nil {
		writeServiceError(w, r, err, "list team members")
		return
	}

	items := make([]profileResponse, 0, len(members))
	for i := range members {
		items = append(items, toProfileResponse(&members[i]))
	}
	response.Success(w, http.StatusOK, items)
}
