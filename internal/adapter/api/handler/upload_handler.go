package handler

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/domain/service"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/response"
)

type UploadHandler struct {
	blobStore service.BlobStorageService
	identity  *usecase.IdentityUseCase
}

func NewUploadHandler(blobStore service.BlobStorageService, identity *usecase.IdentityUseCase) *UploadHandler {
	return &UploadHandler{
		blobStore: blobStore,
		identity:  identity,
	}
}

type createUploadRequest struct {
	MimeType string `json:"mime_type" validate:"required"`
}

// CreateUpload hands the client a short-lived signed URL; the returned
// storage_ref is what messages and stories carry instead of raw URLs.
func (h *UploadHandler) CreateUpload(c echo.Context) error {
	if _, err := currentUser(c, h.identity); err != nil {
		return response.Error(c, err)
	}

	var req createUploadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	handle, err := h.blobStore.GenerateUploadHandle(c.Request().Context(), req.MimeType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, handle)
}
