package product

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
)

// ErrProductNotFound is returned when a product record is not found.
var ErrProductNotFound = apperr.WithCode(apperr.NotFound, "PRODUCT_NOT_FOUND", "Product not found")

// ErrConcurrentUpdate is returned when the product's status changed between
// reading and writing it.
var ErrConcurrentUpdate = apperr.WithCode(apperr.Conflict, "CONCURRENT_UPDATE", "Product was modified by another request, reload and retry")

// Repository provides CRUD operations on the products table.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*WithCreator, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	// Update applies the patch if the product is still in the expected
	// status. Moving to Deleted stamps deleted_at with now unless it is
	// already set.
	Update(ctx context.Context, id uuid.UUID, expected Status, patch Patch, now time.Time) (*Product, error)
	// PurgeDeletedBefore permanently removes Deleted products whose
	// deleted_at is older than cutoff and returns how many were removed.
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
