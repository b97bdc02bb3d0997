package handler

import (
	"time"

	"github.com/daap14/teamhub/internal/product"
	"github.com/daap14/teamhub/internal/profile"
	"github.com/daap14/teamhub/internal/team"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// teamResponse is the API representation of a team.
type teamResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	InviteCode string `json:"invite_code"`
	CreatedAt  string `json:"created_at"`
}

func toTeamResponse(t *team.Team) teamResponse {
	return teamResponse{
		ID:         t.ID.String(),
		Name:       t.Name,
		Slug:       t.Slug,
		InviteCode: t.InviteCode,
		CreatedAt:  formatTime(t.CreatedAt),
	}
}

// profileResponse is the API representation of a profile.
type profileResponse struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Email            *string       `json:"email"`
	AvatarURL        *string       `json:"avatar_url"`
	TeamID           *string       `json:"team_id"`
	ProfileCompleted bool          `json:"profile_completed"`
	Team             *teamResponse `json:"team,omitempty"`
	CreatedAt        string        `json:"created_at"`
	UpdatedAt        string        `json:"updated_at"`
}

func toProfileResponse(p *profile.Profile) profileResponse {
	resp := profileResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		Email:            p.Email,
		AvatarURL:        p.AvatarURL,
		ProfileCompleted: p.ProfileCompleted,
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
	}
	if p.TeamID != nil {
		id := p.TeamID.String()
		resp.TeamID = &id
	}
	if p.Team != nil {
		resp.Team = &teamResponse{
			ID:         p.Team.ID.String(),
			Name:       p.Team.Name,
			Slug:       p.Team.Slug,
			InviteCode: p.Team.InviteCode,
			CreatedAt:  formatTime(p.Team.CreatedAt),
		}
	}
	return resp
}

// productResponse is the API representation of a product.
type productResponse struct {
	ID          string  `json:"id"`
	TeamID      string  `json:"team_id"`
	CreatedBy   string  `json:"created_by"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	DeletedAt   *string `json:"deleted_at"`
}

// productWithCreatorResponse adds the creator's display data to a product.
type productWithCreatorResponse struct {
	productResponse
	CreatorName   string  `json:"creator_name"`
	CreatorAvatar *string `json:"creator_avatar"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID.String(),
		TeamID:      p.TeamID.String(),
		CreatedBy:   p.CreatedBy.String(),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Status:      string(p.Status),
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
		DeletedAt:   formatTimePtr(p.DeletedAt),
	}
}

func toProductWithCreatorResponse(p *product.WithCreator) productWithCreatorResponse {
	return productWithCreatorResponse{
		productResponse: toProductResponse(&p.Product),
		CreatorName:     p.CreatorName,
		CreatorAvatar:   p.CreatorAvatar,
	}
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type productListResponse struct {
	Data       []productWithCreatorResponse `json:"data"`
	Pagination paginationResponse           `json:"pagination"`
}

func toProductListResponse(res *product.ListResult) productListResponse {
	items := make([]productWithCreatorResponse, 0, len(res.Data))
	for i := range res.Data {
		items = append(items, toProductWithCreatorResponse(&res.Data[i]))
	}
	return productListResponse{
		Data: items,
		Pagination: paginationResponse{
			Page:       res.Pagination.Page,
			Limit:      res.Pagination.Limit,
			Total:      res.Pagination.Total,
			TotalPages: res.Pagination.TotalPages,
		},
	}
}
