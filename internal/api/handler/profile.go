package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/profile"
)

// ProfileService is the profile logic used by ProfileHandler.
type ProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	Update(ctx context.Context, id uuid.UUID, in profile.UpdateInput) (*profile.Profile, error)
}

// ProfileHandler handles the caller's own profile.
type ProfileHandler struct {
	profiles       ProfileService
	maxUploadBytes int64
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ProfileService, maxUploadBytes int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, maxUploadBytes: maxUploadBytes}
}

// Get handles GET /profiles.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.Get(r.Context(), identity.ProfileID)
	if err != nil {
		writeServiceError(w, r, err, "get profile")
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(p))
}

// Update handles PATCH /profiles with a multipart form carrying username,
// an optional email and an optional avatar image.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if !parseMultipart(w, r, h.maxUploadBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := profile.UpdateInput{}
	in.Name, _ = formValue(r, "username")
	if email, sent := formValue(r, "email"); sent {
		in.Email = &email
	}

	avatar, f, fieldErrors := formImage(r, "avatar")
	if len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}
	if f != nil {
		defer f.Close()
	}
	in.Avatar = avatar

	p, err := h.profiles.Update(r.Context(), identity.ProfileID, in)
	if err != nil {
		writeServiceError(w, r, err, "update profile")
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(p))
}
