package product

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a product.
type Status string

const (
	StatusDraft   Status = "Draft"
	StatusActive  Status = "Active"
	StatusDeleted Status = "Deleted"
)

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusDraft, StatusActive, StatusDeleted:
		return st, true
	default:
		return "", false
	}
}

// UnknownCreator is the display name used when the creator's profile is gone.
const UnknownCreator = "Unknown"

// Product represents a row in the products table.
type Product struct {
	ID          uuid.UUID
	TeamID      uuid.UUID
	CreatedBy   uuid.UUID
	Title       string
	Description *string
	Image       *string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// WithCreator is a product with its creator's display data.
type WithCreator struct {
	Product
	CreatorName   string
	CreatorAvatar *string
}

// CreateInput holds the fields of a new product.
type CreateInput struct {
	TeamID      uuid.UUID
	Title       string
	Description *string
	Image       *string
}

// Patch holds the fields of a product update. Nil fields are not updated.
type Patch struct {
	Title       *string
	Description *string
	Image       *string
	Status      *Status
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil && p.Status == nil
}

// StatusOnly reports whether the patch sets the status and nothing else.
func (p Patch) StatusOnly() bool {
	return p.Status != nil && p.Title == nil && p.Description == nil && p.Image == nil
}

// Sort columns and directions accepted by List.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within a Postgres integer OFFSET.
	MaxPage = math.MaxInt32 / MaxLimit
)

// ListParams holds optional filters, sorting and pagination for listing products.
type ListParams struct {
	TeamID    *uuid.UUID
	Status    *Status
	CreatedBy *uuid.UUID
	Search    string // case-insensitive substring of title or description
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Normalize replaces missing or out-of-range values with defaults and caps
// the page so that the row offset cannot overflow.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.SortBy != SortByCreatedAt && p.SortBy != SortByUpdatedAt {
		p.SortBy = SortByCreatedAt
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		p.SortOrder = SortDesc
	}
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// NewPagination computes the page count for total matching rows.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Offset is the number of rows skipped before the page.
func (p ListParams) Offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Data       []WithCreator
	Pagination Pagination
}
