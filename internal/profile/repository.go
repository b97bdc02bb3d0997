package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
)

// ErrProfileNotFound is returned when a profile record is not found.
var ErrProfileNotFound = apperr.New(apperr.NotFound, "profile not found")

// ErrDuplicateEmail is returned when another profile already owns the e-mail address.
var ErrDuplicateEmail = apperr.WithCode(apperr.Conflict, "DUPLICATE_EMAIL", "email is already in use")

// Repository provides operations on the profiles table.
type Repository interface {
	Ensure(ctx context.Context, id uuid.UUID, email *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Profile, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Profile, error)
}
