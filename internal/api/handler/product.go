package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/product"
	"github.com/daap14/teamhub/internal/storage"
)

// ProductService is the product lifecycle used by ProductHandler.
type ProductService interface {
	Create(ctx context.Context, callerID uuid.UUID, in product.CreateInput) (*product.Product, error)
	Get(ctx context.Context, callerID, id uuid.UUID) (*product.WithCreator, error)
	List(ctx context.Context, callerID uuid.UUID, params product.ListParams) (*product.ListResult, error)
	Update(ctx context.Context, callerID, id uuid.UUID, patch product.Patch) (*product.Product, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	UploadImage(ctx context.Context, callerID, id uuid.UUID, file *storage.File) (*product.Product, error)
}

// createProductRequest is the request body for POST /products.
type createProductRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	TeamID      string  `json:"team_id"`
}

// updateProductRequest is the request body for PATCH /products/{id}.
type updateProductRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Status      *string `json:"status"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// ProductHandler handles product endpoints.
type ProductHandler struct {
	products       ProductService
	maxUploadBytes int64
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{products: products, maxUploadBytes: maxUploadBytes}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	params, fieldErrors := validation.ParseListQuery(r.URL.Query())
	if len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}

	result, err := h.products.List(r.Context(), identity.ProfileID, params)
	if err != nil {
		writeServiceError(w, r, err, "list products")
		return
	}

	response.Success(w, http.StatusOK, toProductListResponse(result))
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := h.products.Get(r.Context(), identity.ProfileID, id)
	if err != nil {
		writeServiceError(w, r, err, "get product")
		return
	}

	response.Success(w, http.StatusOK, toProductWithCreatorResponse(p))
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateProductFields(validation.ProductFields{
		Title:       &req.Title,
		Description: req.Description,
		Image:       req.Image,
	})
	teamID := validation.ParseOptionalUUID("team_id", req.TeamID, &fieldErrors)
	if len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}

	in := product.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	}
	if teamID != nil {
		in.TeamID = *teamID
	}

	p, err := h.products.Create(r.Context(), identity.ProfileID, in)
	if err != nil {
		writeServiceError(w, r, err, "create product")
		return
	}

	response.Success(w, http.StatusCreated, toProductResponse(p))
}

// Update handles PATCH /products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req updateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateProductFields(validation.ProductFields(req)); len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}

	patch := product.Patch{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Status != nil {
		st, _ := product.ParseStatus(*req.Status)
		patch.Status = &st
	}

	p, err := h.products.Update(r.Context(), identity.ProfileID, id, patch)
	if err != nil {
		writeServiceError(w, r, err, "update product")
		return
	}

	response.Success(w, http.StatusOK, toProductResponse(p))
}

// UploadImage handles POST /products/{id}/image with a multipart "image" part.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if !parseMultipart(w, r, h.maxUploadBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	image, f, fieldErrors := formImage(r, "image")
	if len(fieldErrors) > 0 {
		validationFailed(w, r, fieldErrors)
		return
	}
	if f != nil {
		defer f.Close()
	}

	p, err := h.products.UploadImage(r.Context(), identity.ProfileID, id, image)
	if err != nil {
		writeServiceError(w, r, err, "upload product image")
		return
	}

	response.Success(w, http.StatusOK, toProductResponse(p))
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), identity.ProfileID, id); err != nil {
		writeServiceError(w, r, err, "delete product")
		return
	}

	response.Success(w, http.StatusOK, deleteResponse{Success: true})
}

func productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}
