package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/storage"
)

// ErrNameRequired is returned when an update has a blank name.
var ErrNameRequired = apperr.WithCode(apperr.Validation, "NAME_REQUIRED", "Username is required")

// ErrInvalidEmail is returned when the e-mail address cannot be parsed.
var ErrInvalidEmail = apperr.WithCode(apperr.Validation, "INVALID_EMAIL", "email must be a valid address")

// UpdateInput is the caller-supplied data for a profile update.
type UpdateInput struct {
	Name   string
	Email  *string
	Avatar *storage.File
}

// Service implements profile reads and the profile-setup update.
type Service struct {
	repo   Repository
	store  storage.Store
	logger *slog.Logger
}

// NewService creates a new profile Service.
func NewService(repo Repository, store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, logger: logger}
}

// Ensure creates the profile for an identity seen for the first time. A
// profile that already exists is left untouched and costs a single read.
func (s *Service) Ensure(ctx context.Context, id uuid.UUID, email string) error {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return err
	}

	var e *string
	if email = strings.TrimSpace(email); email != "" {
		e = &email
	}
	return s.repo.Ensure(ctx, id, e)
}

// Get returns the profile joined with its team.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// Members returns the profiles affiliated with the team.
func (s *Service) Members(ctx context.Context, teamID uuid.UUID) ([]Profile, error) {
	return s.repo.ListByTeam(ctx, teamID)
}

// Update sets the profile's name and optional e-mail and avatar, and marks
// the profile as completed. The avatar is stored at a fixed per-profile key,
// so a new upload replaces the previous image.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := UpdateFields{Name: name}

	if in.Email != nil {
		if email := strings.TrimSpace(*in.Email); email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, ErrInvalidEmail
			}
			owner, err := s.repo.GetByEmail(ctx, email)
			switch {
			case err == nil && owner.ID != id:
				return nil, ErrDuplicateEmail
			case err != nil && apperr.KindOf(err) != apperr.NotFound:
				return nil, fmt.Errorf("checking email ownership: %w", err)
			}
			fields.Email = &email
		}
	}

	if !in.Avatar.Empty() {
		key := AvatarKey(id, in.Avatar.Filename)
		url, err := s.store.Put(ctx, storage.AvatarBucket, key, *in.Avatar)
		if err != nil {
			return nil, apperr.Wrap(apperr.Transient, "Failed to upload avatar", err)
		}
		fields.AvatarURL = &url
	}

	p, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "profile_id", id, "avatar", fields.AvatarURL != nil)
	return p, nil
}

// AvatarKey is the object key holding a profile's current avatar.
func AvatarKey(id uuid.UUID, filename string) string {
	return "avatars/" + id.String() + "." + storage.Ext(filename, "png")
}
