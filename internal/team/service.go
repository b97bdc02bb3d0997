package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/profile"
)

// ErrNameRequired is returned when a team is created without a name.
var ErrNameRequired = apperr.WithCode(apperr.Validation, "NAME_REQUIRED", "Team name is required")

// ErrInviteCodeRequired is returned when a join request has a blank code.
var ErrInviteCodeRequired = apperr.WithCode(apperr.Validation, "INVITE_CODE_REQUIRED", "Invite code is required")

// ErrInvalidInviteCode is returned when no team matches the invite code.
var ErrInvalidInviteCode = apperr.WithCode(apperr.NotFound, "INVALID_INVITE_CODE", "Invalid invite code")

// ErrNotMember is returned when the caller asks for a team it does not belong to.
var ErrNotMember = apperr.WithCode(apperr.Forbidden, "NOT_A_MEMBER", "You are not a member of this team")

// inviteCodeAttempts bounds regeneration after invite code collisions.
const inviteCodeAttempts = 5

// Profiles is the profile data the membership workflow reads.
type Profiles interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]profile.Profile, error)
}

// Service implements the team membership workflow: a profile moves from
// unaffiliated to affiliated exactly once, by creating or joining a team.
type Service struct {
	repo     Repository
	profiles Profiles
	logger   *slog.Logger
}

// NewService creates a new team Service.
func NewService(repo Repository, profiles Profiles, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, profiles: profiles, logger: logger}
}

// Create creates a team and makes the caller its first member.
func (s *Service) Create(ctx context.Context, profileID uuid.UUID, name, slug string) (*Team, error) {
	if err := s.requireUnaffiliated(ctx, profileID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	effective, err := EffectiveSlug(name, slug)
	if err != nil {
		return nil, fmt.Errorf("generating slug: %w", err)
	}

	if err := s.checkUnused(ctx, s.repo.GetByName, name, ErrDuplicateTeamName); err != nil {
		return nil, err
	}
	if err := s.checkUnused(ctx, s.repo.GetBySlug, effective, ErrDuplicateSlug); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= inviteCodeAttempts; attempt++ {
		code, err := NewInviteCode()
		if err != nil {
			return nil, fmt.Errorf("generating invite code: %w", err)
		}

		t := &Team{Name: name, Slug: effective, InviteCode: code}
		err = s.repo.CreateWithOwner(ctx, t, profileID)
		if errors.Is(err, ErrDuplicateInviteCode) {
			s.logger.Warn("invite code collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("team created", "team_id", t.ID, "slug", t.Slug, "profile_id", profileID)
		return t, nil
	}

	return nil, apperr.New(apperr.Internal, "could not allocate a unique invite code")
}

// Join affiliates the caller with the team that owns the invite code.
func (s *Service) Join(ctx context.Context, profileID uuid.UUID, inviteCode string) (*Team, error) {
	if err := s.requireUnaffiliated(ctx, profileID); err != nil {
		return nil, err
	}

	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, ErrInviteCodeRequired
	}

	t, err := s.repo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, err
	}

	if err := s.repo.AssignProfile(ctx, profileID, t.ID); err != nil {
		return nil, err
	}

	s.logger.Info("team joined", "team_id", t.ID, "profile_id", profileID)
	return t, nil
}

// Get returns the team if the caller belongs to it.
func (s *Service) Get(ctx context.Context, profileID, teamID uuid.UUID) (*Team, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.TeamID == nil || *p.TeamID != teamID {
		return nil, ErrNotMember
	}

	return s.repo.GetByID(ctx, teamID)
}

// Members lists the profiles in the caller's team.
func (s *Service) Members(ctx context.Context, profileID uuid.UUID) ([]profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.TeamID == nil {
		return nil, ErrNotMember
	}
	return s.profiles.ListByTeam(ctx, *p.TeamID)
}

func (s *Service) requireUnaffiliated(ctx context.Context, profileID uuid.UUID) error {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if p.HasTeam() {
		return ErrAlreadyInTeam
	}
	return nil
}

func (s *Service) checkUnused(ctx context.Context, lookup func(context.Context, string) (*Team, error), value string, conflict error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return conflict
	case errors.Is(err, ErrTeamNotFound):
		return nil
	default:
		return err
	}
}
