package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
)

// UploadHandler exposes the listing image upload used by the add-listing form.
type UploadHandler struct {
	mediaService core.MediaService
	maxUpload    int64
	logger       *zap.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ms core.MediaService, maxUpload int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{mediaService: ms, maxUpload: maxUpload, logger: logger}
}

// UploadListingImage handles POST /uploads/listing-image (multipart "image" file).
func (h *UploadHandler) UploadListingImage(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	file, err := readUpload(c, "image", h.maxUpload)
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.MsgInvalidImage})
		return
	}
	url, err := h.mediaService.UploadListingImage(c.Request.Context(), uid, *file)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, UploadResponse{URL: url})
}
