package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/profile"
	"github.com/daap14/teamhub/internal/storage"
)

var (
	// ErrTitleRequired is returned when a product has a blank title.
	ErrTitleRequired = apperr.WithCode(apperr.Validation, "TITLE_REQUIRED", "Title is required")
	// ErrTeamRequired is returned when a product is created without a team.
	ErrTeamRequired = apperr.WithCode(apperr.Validation, "TEAM_REQUIRED", "team_id is required")
	// ErrEmptyPatch is returned when an update carries no fields.
	ErrEmptyPatch = apperr.WithCode(apperr.Validation, "EMPTY_UPDATE", "No fields to update")
	// ErrImageRequired is returned when an image upload has no content.
	ErrImageRequired = apperr.WithCode(apperr.Validation, "IMAGE_REQUIRED", "Image file is required")

	// ErrNotDraft is returned when fields other than status are edited
	// outside the Draft status.
	ErrNotDraft = apperr.WithCode(apperr.InvalidState, "NOT_DRAFT", "Can only edit products in Draft status")
	// ErrInvalidTransition is returned for a status change outside the
	// allowed transitions.
	ErrInvalidTransition = apperr.WithCode(apperr.InvalidState, "INVALID_STATUS_TRANSITION", "Status change is not allowed")

	// ErrNoTeam is returned when the caller has not joined a team yet.
	ErrNoTeam = apperr.WithCode(apperr.Forbidden, "NO_TEAM", "You must join a team first")
	// ErrOtherTeam is returned when the caller acts on another team's products.
	ErrOtherTeam = apperr.WithCode(apperr.Forbidden, "FORBIDDEN", "Cannot access products of another team")
	// ErrNotCreator is returned when someone other than the creator mutates a product.
	ErrNotCreator = apperr.WithCode(apperr.Forbidden, "NOT_CREATOR", "Only the creator can modify this product")
)

// DefaultRetention is how long soft-deleted products are kept before purge.
const DefaultRetention = 14 * 24 * time.Hour

// Profiles resolves the caller's team affiliation.
type Profiles interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for soft-delete stamps and the
// purge cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// Service implements the product lifecycle. Every operation is scoped to
// the caller's team and mutations are restricted to the product's creator.
type Service struct {
	repo      Repository
	profiles  Profiles
	store     storage.Store
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time
}

// NewService creates a new product Service.
func NewService(repo Repository, profiles Profiles, store storage.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		profiles:  profiles,
		store:     store,
		logger:    logger,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new Draft product in the caller's team.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, in CreateInput) (*Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if in.TeamID == uuid.Nil {
		return nil, ErrTeamRequired
	}

	teamID, err := s.callerTeam(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if teamID != in.TeamID {
		return nil, ErrOtherTeam
	}

	p := &Product{
		TeamID:      in.TeamID,
		CreatedBy:   callerID,
		Title:       title,
		Description: nonEmpty(in.Description),
		Image:       nonEmpty(in.Image),
		Status:      StatusDraft,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product created", "product_id", p.ID, "team_id", p.TeamID, "created_by", callerID)
	return p, nil
}

// Get returns a product of the caller's team with its creator's display data.
func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*WithCreator, error) {
	teamID, err := s.callerTeam(ctx, callerID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TeamID != teamID {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// List returns a page of the caller's team products. A team filter naming
// another team is rejected.
func (s *Service) List(ctx context.Context, callerID uuid.UUID, params ListParams) (*ListResult, error) {
	teamID, err := s.callerTeam(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if params.TeamID != nil && *params.TeamID != teamID {
		return nil, ErrOtherTeam
	}
	params.TeamID = &teamID
	params.Normalize()

	return s.repo.List(ctx, params)
}

// Update applies a patch. Fields other than status may only change while
// the product is a Draft, and status changes must follow CanTransition.
func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, patch Patch) (*Product, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &title
	}

	current, err := s.ownedProduct(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if !patch.StatusOnly() && current.Status != StatusDraft {
		return nil, ErrNotDraft
	}
	if patch.Status != nil && !CanTransition(current.Status, *patch.Status) {
		return nil, &apperr.Error{
			Kind:    apperr.InvalidState,
			Code:    ErrInvalidTransition.Code,
			Message: fmt.Sprintf("Cannot change status from %s to %s", current.Status, *patch.Status),
			Err:     ErrInvalidTransition,
		}
	}

	p, err := s.repo.Update(ctx, id, current.Status, patch, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != current.Status {
		s.logger.Info("product status changed", "product_id", id, "from", current.Status, "to", p.Status)
	}
	return p, nil
}

// Delete soft-deletes the product. Deleting an already deleted product
// succeeds and keeps the original deletion time.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	deleted := StatusDeleted
	_, err := s.Update(ctx, callerID, id, Patch{Status: &deleted})
	return err
}

// UploadImage stores an image for a Draft product and sets it as the
// product image.
func (s *Service) UploadImage(ctx context.Context, callerID, id uuid.UUID, file *storage.File) (*Product, error) {
	if file.Empty() {
		return nil, ErrImageRequired
	}

	current, err := s.ownedProduct(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	key := ImageKey(id, s.now(), file.Filename)
	url, err := s.store.Put(ctx, storage.ProductImageBucket, key, *file)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "Failed to upload image", err)
	}

	p, err := s.repo.Update(ctx, id, current.Status, Patch{Image: &url}, s.now().UTC())
	if err != nil {
		if delErr := s.store.Delete(ctx, storage.ProductImageBucket, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned product image", "key", key, "error", delErr)
		}
		return nil, err
	}
	return p, nil
}

// PurgeOldDeleted permanently removes products that were soft-deleted
// longer ago than the retention window.
func (s *Service) PurgeOldDeleted(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)
	n, err := s.repo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("purged deleted products", "count", n, "cutoff", cutoff)
	return n, nil
}

// ImageKey is the object key for a newly uploaded product image.
func ImageKey(id uuid.UUID, at time.Time, filename string) string {
	return id.String() + "-" + strconv.FormatInt(at.UnixMilli(), 10) + "." + storage.Ext(filename, "png")
}

func (s *Service) ownedProduct(ctx context.Context, callerID, id uuid.UUID) (*WithCreator, error) {
	p, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != callerID {
		return nil, ErrNotCreator
	}
	return p, nil
}

func (s *Service) callerTeam(ctx context.Context, callerID uuid.UUID) (uuid.UUID, error) {
	p, err := s.profiles.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return uuid.Nil, ErrNoTeam
		}
		return uuid.Nil, err
	}
	if p.TeamID == nil {
		return uuid.Nil, ErrNoTeam
	}
	return *p.TeamID, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
