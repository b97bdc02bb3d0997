package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/storage"
)

const multipartMemory = 1 << 20

// parseMultipart parses a size-limited multipart form. It writes the error
// response and returns false on failure.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Err(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload is too large", requestID)
			return false
		}
		response.Err(w, http.StatusBadRequest, "INVALID_FORM", "Request body must be multipart/form-data", requestID)
		return false
	}
	return true
}

// formValue returns the named form value and whether it was sent at all.
func formValue(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// formImage opens the named image part. It returns nil without error when
// the part is absent. The caller must close the returned file.
func formImage(r *http.Request, name string) (*storage.File, multipart.File, []validation.FieldError) {
	f, hdr, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, []validation.FieldError{{Field: name, Message: name + " could not be read"}}
	}

	contentType := hdr.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		f.Close()
		return nil, nil, []validation.FieldError{{Field: name, Message: name + " must be an image"}}
	}

	return &storage.File{
		Filename:    hdr.Filename,
		ContentType: contentType,
		Size:        hdr.Size,
		Body:        f,
	}, f, nil
}
