package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/api/handler"
	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/product"
	"github.com/daap14/teamhub/internal/storage"
)

// --- Mock Product Service ---

type mockProductService struct {
	createFn func(ctx context.Context, callerID uuid.UUID, in product.CreateInput) (*product.Product, error)
	getFn    func(ctx context.Context, callerID, id uuid.UUID) (*product.WithCreator, error)
	listFn   func(ctx context.Context, callerID uuid.UUID, params product.ListParams) (*product.ListResult, error)
	updateFn func(ctx context.Context, callerID, id uuid.UUID, patch product.Patch) (*product.Product, error)
	deleteFn func(ctx context.Context, callerID, id uuid.UUID) error
	uploadFn func(ctx context.Context, callerID, id uuid.UUID, file *storage.File) (*product.Product, error)
}

func (m *mockProductService) Create(ctx context.Context, callerID uuid.UUID, in product.CreateInput) (*product.Product, error) {
	if m.createFn != nil {
		return m.createFn(ctx, callerID, in)
	}
	p := sampleProduct(uuid.New(), product.StatusDraft)
	p.TeamID, p.CreatedBy, p.Title = in.TeamID, callerID, in.Title
	return p, nil
}

func (m *mockProductService) Get(ctx context.Context, callerID, id uuid.UUID) (*product.WithCreator, error) {
	if m.getFn != nil {
		return m.getFn(ctx, callerID, id)
	}
	return &product.WithCreator{Product: *sampleProduct(id, product.StatusDraft), CreatorName: "Ada"}, nil
}

func (m *mockProductService) List(ctx context.Context, callerID uuid.UUID, params product.ListParams) (*product.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, callerID, params)
	}
	return &product.ListResult{Data: []product.WithCreator{}, Pagination: product.NewPagination(params.Page, params.Limit, 0)}, nil
}

func (m *mockProductService) Update(ctx context.Context, callerID, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, callerID, id, patch)
	}
	return sampleProduct(id, product.StatusDraft), nil
}

func (m *mockProductService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, callerID, id)
	}
	return nil
}

func (m *mockProductService) UploadImage(ctx context.Context, callerID, id uuid.UUID, file *storage.File) (*product.Product, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, callerID, id, file)
	}
	return sampleProduct(id, product.StatusDraft), nil
}

func sampleProduct(id uuid.UUID, status product.Status) *product.Product {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &product.Product{
		ID:        id,
		TeamID:    uuid.New(),
		CreatedBy: uuid.New(),
		Title:     "Widget",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

const testUploadLimit = 1 << 20

// ===== GET /products =====

func TestProductList_ParsesQuery(t *testing.T) {
	t.Parallel()

	var got product.ListParams
	svc := &mockProductService{
		listFn: func(_ context.Context, _ uuid.UUID, params product.ListParams) (*product.ListResult, error) {
			got = params
			avatar := "https://cdn.test/a.png"
			return &product.ListResult{
				Data: []product.WithCreator{
					{Product: *sampleProduct(uuid.New(), product.StatusActive), CreatorName: "Ada", CreatorAvatar: &avatar},
					{Product: *sampleProduct(uuid.New(), product.StatusActive), CreatorName: product.UnknownCreator},
				},
				Pagination: product.NewPagination(params.Page, params.Limit, 12),
			}, nil
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)

	req, w := makeChiRequest(http.MethodGet, "/products?status=Active&search=wid&page=2&limit=5&sort_by=updated_at&sort_order=asc", nil, "/products", nil)
	h.List(w, asCaller(req, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.Status)
	assert.Equal(t, product.StatusActive, *got.Status)
	assert.Equal(t, "wid", got.Search)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "updated_at", got.SortBy)
	assert.Equal(t, "asc", got.SortOrder)

	env := parseEnvelope(t, w)
	data := env["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Ada", first["creator_name"])
	assert.Equal(t, "https://cdn.test/a.png", first["creator_avatar"])
	second := data[1].(map[string]interface{})
	assert.Equal(t, "Unknown", second["creator_name"])
	assert.Contains(t, second, "creator_avatar")
	assert.Nil(t, second["creator_avatar"])

	pagination := env["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(5), pagination["limit"])
	assert.Equal(t, float64(12), pagination["total"])
	assert.Equal(t, float64(3), pagination["total_pages"])
}

func TestProductList_InvalidStatus(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	req, w := makeChiRequest(http.MethodGet, "/products?status=Archived", nil, "/products", nil)
	h.List(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", parseEnvelope(t, w)["code"])
}

func TestProductList_OtherTeamForbidden(t *testing.T) {
	t.Parallel()

	svc := &mockProductService{
		listFn: func(context.Context, uuid.UUID, product.ListParams) (*product.ListResult, error) {
			return nil, product.ErrOtherTeam
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)
	req, w := makeChiRequest(http.MethodGet, "/products?team_id="+uuid.NewString(), nil, "/products", nil)
	h.List(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ===== GET /products/{id} =====

func TestProductGet_Success(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	req, w := makeChiRequest(http.MethodGet, "/products/"+id.String(), nil, "/products/{id}", map[string]string{"id": id.String()})
	h.Get(w, asCaller(req, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, id.String(), env["id"])
	assert.Equal(t, "Draft", env["status"])
	assert.Equal(t, "Ada", env["creator_name"])
	assert.Nil(t, env["deleted_at"])
}

func TestProductGet_InvalidID(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	req, w := makeChiRequest(http.MethodGet, "/products/xyz", nil, "/products/{id}", map[string]string{"id": "xyz"})
	h.Get(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", parseEnvelope(t, w)["code"])
}

func TestProductGet_NotFound(t *testing.T) {
	t.Parallel()

	svc := &mockProductService{
		getFn: func(context.Context, uuid.UUID, uuid.UUID) (*product.WithCreator, error) {
			return nil, product.ErrProductNotFound
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)
	id := uuid.NewString()
	req, w := makeChiRequest(http.MethodGet, "/products/"+id, nil, "/products/{id}", map[string]string{"id": id})
	h.Get(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", parseEnvelope(t, w)["code"])
}

// ===== POST /products =====

func TestProductCreate_Success(t *testing.T) {
	t.Parallel()

	teamID := uuid.New()
	var got product.CreateInput
	svc := &mockProductService{
		createFn: func(_ context.Context, callerID uuid.UUID, in product.CreateInput) (*product.Product, error) {
			got = in
			p := sampleProduct(uuid.New(), product.StatusDraft)
			p.TeamID, p.CreatedBy, p.Title = in.TeamID, callerID, in.Title
			return p, nil
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)

	body := mustJSON(t, map[string]interface{}{
		"title":       "Widget",
		"description": "A widget",
		"team_id":     teamID.String(),
	})
	req, w := makeChiRequest(http.MethodPost, "/products", body, "/products", nil)
	h.Create(w, asCaller(req, uuid.New()))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, teamID, got.TeamID)
	require.NotNil(t, got.Description)
	assert.Equal(t, "A widget", *got.Description)
	assert.Nil(t, got.Image)

	env := parseEnvelope(t, w)
	assert.Equal(t, "Draft", env["status"])
	assert.Equal(t, teamID.String(), env["team_id"])
}

func TestProductCreate_MissingTeamReachesService(t *testing.T) {
	t.Parallel()

	svc := &mockProductService{
		createFn: func(_ context.Context, _ uuid.UUID, in product.CreateInput) (*product.Product, error) {
			assert.Equal(t, uuid.Nil, in.TeamID)
			return nil, product.ErrTeamRequired
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)

	req, w := makeChiRequest(http.MethodPost, "/products", mustJSON(t, map[string]string{"title": "Widget"}), "/products", nil)
	h.Create(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TEAM_REQUIRED", parseEnvelope(t, w)["code"])
}

func TestProductCreate_InvalidTeamID(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	body := mustJSON(t, map[string]string{"title": "Widget", "team_id": "team-1"})
	req, w := makeChiRequest(http.MethodPost, "/products", body, "/products", nil)
	h.Create(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	details := env["details"].([]interface{})
	assert.Equal(t, "team_id", details[0].(map[string]interface{})["field"])
}

func TestProductCreate_UnknownField(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	body := mustJSON(t, map[string]string{"title": "Widget", "team_id": uuid.NewString(), "status": "Active"})
	req, w := makeChiRequest(http.MethodPost, "/products", body, "/products", nil)
	h.Create(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", parseEnvelope(t, w)["code"])
}

// ===== PATCH /products/{id} =====

func TestProductUpdate_StatusOnly(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var got product.Patch
	svc := &mockProductService{
		updateFn: func(_ context.Context, _, _ uuid.UUID, patch product.Patch) (*product.Product, error) {
			got = patch
			return sampleProduct(id, product.StatusActive), nil
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)

	req, w := makeChiRequest(http.MethodPatch, "/products/"+id.String(), mustJSON(t, map[string]string{"status": "Active"}),
		"/products/{id}", map[string]string{"id": id.String()})
	h.Update(w, asCaller(req, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.Status)
	assert.Equal(t, product.StatusActive, *got.Status)
	assert.True(t, got.StatusOnly())
	assert.Equal(t, "Active", parseEnvelope(t, w)["status"])
}

func TestProductUpdate_InvalidStatus(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	id := uuid.NewString()
	req, w := makeChiRequest(http.MethodPatch, "/products/"+id, mustJSON(t, map[string]string{"status": "Published"}),
		"/products/{id}", map[string]string{"id": id})
	h.Update(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", parseEnvelope(t, w)["code"])
}

func TestProductUpdate_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not draft", product.ErrNotDraft, http.StatusBadRequest, "NOT_DRAFT"},
		{"not creator", product.ErrNotCreator, http.StatusForbidden, "NOT_CREATOR"},
		{"empty patch", product.ErrEmptyPatch, http.StatusBadRequest, "EMPTY_UPDATE"},
		{"concurrent update", product.ErrConcurrentUpdate, http.StatusConflict, product.ErrConcurrentUpdate.Code},
		{"transient", apperr.Wrap(apperr.Transient, "datastore unavailable", errors.New("conn refused")), http.StatusServiceUnavailable, "UNAVAILABLE"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &mockProductService{
				updateFn: func(context.Context, uuid.UUID, uuid.UUID, product.Patch) (*product.Product, error) {
					return nil, tt.err
				},
			}
			h := handler.NewProductHandler(svc, testUploadLimit)
			id := uuid.NewString()
			req, w := makeChiRequest(http.MethodPatch, "/products/"+id, mustJSON(t, map[string]string{"title": "New"}),
				"/products/{id}", map[string]string{"id": id})
			h.Update(w, asCaller(req, uuid.New()))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, parseEnvelope(t, w)["code"])
		})
	}
}

func TestProductUpdate_InvalidTransitionMessage(t *testing.T) {
	t.Parallel()

	svc := &mockProductService{
		updateFn: func(context.Context, uuid.UUID, uuid.UUID, product.Patch) (*product.Product, error) {
			return nil, &apperr.Error{
				Kind:    apperr.InvalidState,
				Code:    product.ErrInvalidTransition.Code,
				Message: "Cannot change status from Active to Draft",
				Err:     product.ErrInvalidTransition,
			}
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)
	id := uuid.NewString()
	req, w := makeChiRequest(http.MethodPatch, "/products/"+id, mustJSON(t, map[string]string{"status": "Draft"}),
		"/products/{id}", map[string]string{"id": id})
	h.Update(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env["code"])
	assert.Equal(t, "Cannot change status from Active to Draft", env["error"])
}

// ===== DELETE /products/{id} =====

func TestProductDelete(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	caller := uuid.New()
	var gotID, gotCaller uuid.UUID
	svc := &mockProductService{
		deleteFn: func(_ context.Context, callerID, pid uuid.UUID) error {
			gotCaller, gotID = callerID, pid
			return nil
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)
	req, w := makeChiRequest(http.MethodDelete, "/products/"+id.String(), nil, "/products/{id}", map[string]string{"id": id.String()})
	h.Delete(w, asCaller(req, caller))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, gotID)
	assert.Equal(t, caller, gotCaller)
	assert.Equal(t, true, parseEnvelope(t, w)["success"])
}

// ===== POST /products/{id}/image =====

func TestProductUploadImage(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var gotName, gotBody string
	svc := &mockProductService{
		uploadFn: func(_ context.Context, _, _ uuid.UUID, file *storage.File) (*product.Product, error) {
			require.NotNil(t, file)
			gotName = file.Filename
			b, _ := io.ReadAll(file.Body)
			gotBody = string(b)
			p := sampleProduct(id, product.StatusDraft)
			url := "https://cdn.test/product-images/x.png"
			p.Image = &url
			return p, nil
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)

	req, w := makeMultipartRequest(t, http.MethodPost, "/products/"+id.String()+"/image", nil,
		map[string]string{"id": id.String()},
		formFile{field: "image", filename: "photo.png", contentType: "image/png", content: "pixels"})
	h.UploadImage(w, asCaller(req, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "photo.png", gotName)
	assert.Equal(t, "pixels", gotBody)
	assert.Equal(t, "https://cdn.test/product-images/x.png", parseEnvelope(t, w)["image"])
}

func TestProductUploadImage_NotAnImage(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, testUploadLimit)
	id := uuid.NewString()
	req, w := makeMultipartRequest(t, http.MethodPost, "/products/"+id+"/image", nil,
		map[string]string{"id": id},
		formFile{field: "image", filename: "notes.txt", contentType: "text/plain", content: "hello"})
	h.UploadImage(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", parseEnvelope(t, w)["code"])
}

func TestProductUploadImage_MissingFile(t *testing.T) {
	t.Parallel()

	svc := &mockProductService{
		uploadFn: func(_ context.Context, _, _ uuid.UUID, file *storage.File) (*product.Product, error) {
			assert.Nil(t, file)
			return nil, product.ErrImageRequired
		},
	}
	h := handler.NewProductHandler(svc, testUploadLimit)
	id := uuid.NewString()
	req, w := makeMultipartRequest(t, http.MethodPost, "/products/"+id+"/image", map[string]string{"other": "x"},
		map[string]string{"id": id})
	h.UploadImage(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IMAGE_REQUIRED", parseEnvelope(t, w)["code"])
}

func TestProductUploadImage_TooLarge(t *testing.T) {
	t.Parallel()

	h := handler.NewProductHandler(&mockProductService{}, 64)
	id := uuid.NewString()
	big := make([]byte, 1024)
	req, w := makeMultipartRequest(t, http.MethodPost, "/products/"+id+"/image", nil,
		map[string]string{"id": id},
		formFile{field: "image", filename: "big.png", contentType: "image/png", content: string(big)})
	h.UploadImage(w, asCaller(req, uuid.New()))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
