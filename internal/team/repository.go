package team

import (
	"context"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = apperr.WithCode(apperr.NotFound, "TEAM_NOT_FOUND", "Team not found")

// ErrDuplicateTeamName is returned when a team with the same name already exists.
var ErrDuplicateTeamName = apperr.WithCode(apperr.Conflict, "DUPLICATE_TEAM_NAME", "Team with this name already exists")

// ErrDuplicateSlug is returned when a team with the same slug already exists.
var ErrDuplicateSlug = apperr.WithCode(apperr.Conflict, "DUPLICATE_TEAM_SLUG", "Team with this slug already exists")

// ErrDuplicateInviteCode is returned when a generated invite code collides
// with an existing team.
var ErrDuplicateInviteCode = apperr.WithCode(apperr.Conflict, "DUPLICATE_INVITE_CODE", "invite code already in use")

// ErrAlreadyInTeam is returned when the profile is already affiliated with a team.
var ErrAlreadyInTeam = apperr.WithCode(apperr.InvalidState, "ALREADY_IN_TEAM", "User is already in a team")

// Repository provides access to the teams table and team affiliation of profiles.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	GetByName(ctx context.Context, name string) (*Team, error)
	GetBySlug(ctx context.Context, slug string) (*Team, error)
	GetByInviteCode(ctx context.Context, code string) (*Team, error)
	// CreateWithOwner inserts the team and affiliates the profile with it in
	// a single transaction. It fails with ErrAlreadyInTeam when the profile
	// gained a team since it was last read.
	CreateWithOwner(ctx context.Context, t *Team, profileID uuid.UUID) error
	// AssignProfile affiliates an unaffiliated profile with the team.
	AssignProfile(ctx context.Context, profileID, teamID uuid.UUID) error
}
