package validation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/daap14/teamhub/internal/product"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxImageURLLength    = 2048
)

// ProductFields mirrors the optional product fields of create and update
// requests.
type ProductFields struct {
	Title       *string
	Description *string
	Image       *string
	Status      *string
}

// ValidateProductFields checks lengths, the image URL and the status name.
// Required-field checks belong to the product service.
func ValidateProductFields(f ProductFields) []FieldError {
	var errs []FieldError

	if f.Title != nil && tooLong(*f.Title, maxTitleLength) {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 200 characters"})
	}
	if f.Description != nil && tooLong(*f.Description, maxDescriptionLength) {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 5000 characters"})
	}
	if f.Image != nil {
		if img := strings.TrimSpace(*f.Image); img != "" {
			if len(img) > maxImageURLLength {
				errs = append(errs, FieldError{Field: "image", Message: "image must be at most 2048 characters"})
			} else if u, err := url.Parse(img); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				errs = append(errs, FieldError{Field: "image", Message: "image must be an http(s) URL"})
			}
		}
	}
	if f.Status != nil {
		if _, ok := product.ParseStatus(*f.Status); !ok {
			errs = append(errs, FieldError{Field: "status", Message: "status must be one of Draft, Active, Deleted"})
		}
	}

	return errs
}

// ParseListQuery builds list parameters from a query string. Malformed
// paging and sorting values fall back to defaults; malformed filters are
// reported as field errors.
func ParseListQuery(q url.Values) (product.ListParams, []FieldError) {
	var errs []FieldError
	params := product.ListParams{
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sort_by"),
		SortOrder: strings.ToLower(q.Get("sort_order")),
	}

	params.TeamID = ParseOptionalUUID("team_id", q.Get("team_id"), &errs)
	params.CreatedBy = ParseOptionalUUID("created_by", q.Get("created_by"), &errs)

	if v := strings.TrimSpace(q.Get("status")); v != "" {
		st, ok := product.ParseStatus(v)
		if !ok {
			errs = append(errs, FieldError{Field: "status", Message: "status must be one of Draft, Active, Deleted"})
		} else {
			params.Status = &st
		}
	}

	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.Limit, _ = strconv.Atoi(q.Get("limit"))
	params.Normalize()

	return params, errs
}
