package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a row in the profiles table. Its ID is the identity
// provider's subject for the user.
type Profile struct {
	ID               uuid.UUID
	Name             string
	Email            *string
	AvatarURL        *string
	TeamID           *uuid.UUID
	ProfileCompleted bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Team is populated by reads that join the profile's team.
	Team *TeamSummary
}

// TeamSummary is the team data returned alongside a profile.
type TeamSummary struct {
	ID         uuid.UUID
	Name       string
	Slug       string
	InviteCode string
	CreatedAt  time.Time
}

// HasTeam reports whether the profile is affiliated with a team.
func (p *Profile) HasTeam() bool {
	return p.TeamID != nil
}

// UpdateFields holds the columns written by a profile update. Nil fields are
// left unchanged; profile_completed is always set.
type UpdateFields struct {
	Name      string
	Email     *string
	AvatarURL *string
}
